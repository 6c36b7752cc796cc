package broadcast

import (
	"context"

	"github.com/streamarena/pk-battle/internal/logger"
)

// Broadcaster delivers realtime payloads to viewer channels. Delivery is
// fire-and-forget from the state machine's perspective; a failed publish is
// logged and counted but never fails the mutation that triggered it.
type Broadcaster interface {
	Publish(ctx context.Context, channelKey string, payload interface{}) error
}

// NoopBroadcaster logs payloads instead of delivering them. Used when no
// Redis address is configured.
type NoopBroadcaster struct{}

// NewNoopBroadcaster creates a broadcaster that only logs
func NewNoopBroadcaster() *NoopBroadcaster {
	return &NoopBroadcaster{}
}

// Publish logs the payload and drops it
func (n *NoopBroadcaster) Publish(ctx context.Context, channelKey string, payload interface{}) error {
	logger.FromContext(ctx).Debug(LogMsgBroadcastDropped, "channel", channelKey)
	return nil
}
