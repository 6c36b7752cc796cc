package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/streamarena/pk-battle/internal/battle"
	"github.com/streamarena/pk-battle/internal/logger"
	"github.com/streamarena/pk-battle/internal/server"
)

// ShutdownComponents holds all components that need graceful shutdown
type ShutdownComponents struct {
	Server      *server.Server
	Sweeper     *battle.Sweeper
	DBPool      *pgxpool.Pool
	RedisClient *redis.Client
}

// GracefulShutdown stops application components in order: the HTTP server
// first so no new requests arrive, then the sweeper so no background job is
// mid-mutation, then the database and Redis connections. Errors during
// shutdown are logged but do not stop the sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	logger.Info(LogMsgShuttingDownServer)

	if err := components.Server.Stop(ctx); err != nil {
		logger.Error(LogMsgServerForcedShutdown, "error", err)
	}

	if components.Sweeper != nil {
		if err := components.Sweeper.Stop(); err != nil {
			logger.Error(LogMsgSweeperStopFailed, "error", err)
		}
	}

	if components.DBPool != nil {
		components.DBPool.Close()
	}

	if components.RedisClient != nil {
		if err := components.RedisClient.Close(); err != nil {
			logger.Error(LogMsgRedisCloseFailed, "error", err)
		}
	}

	logger.Info(LogMsgServerStopped)
}
