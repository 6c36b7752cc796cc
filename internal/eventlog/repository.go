package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry represents one immutable state-log record for a battle.
// Entries are append-only; they are never updated or deleted, and replaying
// them in server-timestamp order reconstructs the battle's full history.
type Entry struct {
	ID              int64                  `json:"id"`
	BattleID        uuid.UUID              `json:"battle_id"`
	EventType       string                 `json:"event_type"`
	EventData       map[string]interface{} `json:"event_data,omitempty"`
	ActingUserID    *string                `json:"acting_user_id,omitempty"`
	ServerTimestamp time.Time              `json:"server_timestamp"`
	ClientTimestamp *time.Time             `json:"client_timestamp,omitempty"`
}

// Filter narrows state-log queries
type Filter struct {
	EventType *string
	Limit     int
}

// Repository defines the interface for state-log storage
type Repository interface {
	// Append stores an entry. The store assigns ID and ServerTimestamp when
	// unset.
	Append(ctx context.Context, entry Entry) error

	// ListForBattle retrieves a battle's entries ordered by server timestamp
	// ascending, optionally filtered by event type
	ListForBattle(ctx context.Context, battleID uuid.UUID, filter Filter) ([]Entry, error)
}
