package bootstrap

import (
	"github.com/redis/go-redis/v9"

	"github.com/streamarena/pk-battle/internal/broadcast"
	"github.com/streamarena/pk-battle/internal/config"
	"github.com/streamarena/pk-battle/internal/event"
	"github.com/streamarena/pk-battle/internal/logger"
)

// InitializeBroadcast wires the broadcast subscriber onto the event bus.
// With Redis configured, battle events fan out over pub/sub channels; without
// it, broadcasts are logged and dropped so the service still runs locally.
// The returned client is nil when Redis is not configured.
func InitializeBroadcast(cfg *config.Config, bus event.Bus) *redis.Client {
	var (
		broadcaster broadcast.Broadcaster
		client      *redis.Client
	)

	if cfg.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		broadcaster = broadcast.NewRedisBroadcaster(client, cfg.BroadcastChannelPrefix)
		logger.Info(LogMsgRedisBroadcastEnabled,
			"addr", cfg.RedisAddr,
			"channel_prefix", cfg.BroadcastChannelPrefix)
	} else {
		broadcaster = broadcast.NewNoopBroadcaster()
		logger.Warn(LogMsgRedisBroadcastDisabled)
	}

	broadcast.NewSubscriber(broadcaster).Register(bus)
	return client
}
