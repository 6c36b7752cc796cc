package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamarena/pk-battle/internal/database/postgres"
	"github.com/streamarena/pk-battle/internal/eventlog"
	"github.com/streamarena/pk-battle/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Battle   repository.Battle
	Stream   repository.Stream
	Score    repository.Score
	Gift     repository.Gift
	EventLog eventlog.Repository
}

// InitializeRepositories creates all repository implementations
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Battle:   postgres.NewBattleRepository(dbPool),
		Stream:   postgres.NewStreamRepository(dbPool),
		Score:    postgres.NewScoreRepository(dbPool),
		Gift:     postgres.NewGiftRepository(dbPool),
		EventLog: postgres.NewEventLogRepository(dbPool),
	}
}
