package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster publishes payloads on Redis pub/sub channels. The realtime
// edge (WebSocket gateways) subscribes to these channels and forwards messages
// to connected viewers.
type RedisBroadcaster struct {
	client        *redis.Client
	channelPrefix string
}

// NewRedisBroadcaster creates a Redis-backed broadcaster
func NewRedisBroadcaster(client *redis.Client, channelPrefix string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, channelPrefix: channelPrefix}
}

// Publish serializes the payload and publishes it on the channel
func (r *RedisBroadcaster) Publish(ctx context.Context, channelKey string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast payload: %w", err)
	}

	channel := r.channelPrefix + ":" + channelKey
	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}
