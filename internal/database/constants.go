package database

import "time"

// Pool tuning for battle-state traffic: frequent short queries with bursts
// around battle start/end, so connections stay warm and rotate on a schedule.
const (
	FallbackMaxConnections = 10

	MaxConnIdleTime   = 5 * time.Minute
	MaxConnLifetime   = 30 * time.Minute
	HealthCheckPeriod = time.Minute
)

// Error message constants
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
	ErrMsgFailedToRunMigrations   = "failed to run migrations"
)

// Log message constants
const (
	LogMsgBattleDatabaseReady = "Battle database pool ready"
	LogMsgMigrationsApplied   = "Database migrations applied"
)
