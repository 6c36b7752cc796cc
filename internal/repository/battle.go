package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamarena/pk-battle/internal/domain"
)

// Battle defines the interface for battle data access.
// Mutations to a single battle row must be serialized; the services hold a
// per-battle lock around every read-modify-write.
type Battle interface {
	CreateBattle(ctx context.Context, battle *domain.Battle) error
	GetBattle(ctx context.Context, id uuid.UUID) (*domain.Battle, error)
	UpdateBattle(ctx context.Context, battle *domain.Battle) error

	// GetActiveBattleForStream returns the battle currently PENDING or ACTIVE
	// for the given stream (host, opponent or cohost side), or nil when none.
	GetActiveBattleForStream(ctx context.Context, streamID string) (*domain.Battle, error)

	// ListTimedOut returns IDs of active battles whose countdown or round
	// timer expired before the given instant. Used by the sweeper to apply
	// the same lazy clock progression a heartbeat would.
	ListTimedOut(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
}
