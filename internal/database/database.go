package database

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamarena/pk-battle/internal/logger"
)

// Pool is the subset of pgxpool.Pool the HTTP layer needs for readiness checks
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// NewPool creates the PostgreSQL connection pool for battle state. Battle rows
// are small and hot (every heartbeat and gift touches one), so the pool keeps
// a floor of warm connections and recycles them on a fixed lifetime instead of
// letting them idle out between bursts.
func NewPool(ctx context.Context, connString string, maxConns, minConns int) (*pgxpool.Pool, error) {
	config, err := poolConfig(connString, maxConns, minConns)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	logger.Info(LogMsgBattleDatabaseReady,
		"max_conns", config.MaxConns,
		"min_conns", config.MinConns)
	return pool, nil
}

// poolConfig parses the connection string and applies the service's pool
// tuning. Out-of-range sizes are clamped rather than rejected so a bad env
// value degrades to a working pool.
func poolConfig(connString string, maxConns, minConns int) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	if maxConns <= 0 {
		maxConns = FallbackMaxConnections
	}
	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	if minConns < 0 {
		minConns = 0
	}
	if minConns > maxConns {
		minConns = maxConns
	}

	config.MaxConns = int32(maxConns)
	config.MinConns = int32(minConns)
	config.MaxConnIdleTime = MaxConnIdleTime
	config.MaxConnLifetime = MaxConnLifetime
	config.HealthCheckPeriod = HealthCheckPeriod
	return config, nil
}
