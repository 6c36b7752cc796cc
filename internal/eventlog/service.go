package eventlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamarena/pk-battle/internal/logger"
)

// Service handles battle state logging business logic
type Service interface {
	// Record appends a state-log entry for a battle. Failures are surfaced
	// to the caller and logged; callers decide whether the triggering
	// mutation proceeds.
	Record(ctx context.Context, battleID uuid.UUID, eventType string, eventData map[string]interface{}, actingUserID string, clientTimestamp *time.Time) error

	// ListForBattle returns a battle's entries in replay order
	ListForBattle(ctx context.Context, battleID uuid.UUID, eventType string, limit int) ([]Entry, error)
}

type service struct {
	repo Repository
}

// NewService creates a new state logging service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Record appends a state-log entry for a battle
func (s *service) Record(ctx context.Context, battleID uuid.UUID, eventType string, eventData map[string]interface{}, actingUserID string, clientTimestamp *time.Time) error {
	log := logger.FromContext(ctx)

	entry := Entry{
		BattleID:        battleID,
		EventType:       eventType,
		EventData:       eventData,
		ServerTimestamp: time.Now().UTC(),
		ClientTimestamp: clientTimestamp,
	}
	if actingUserID != "" {
		entry.ActingUserID = &actingUserID
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		log.Error(LogMsgAppendFailed, "error", err, "battle_id", battleID, "event_type", eventType)
		return err
	}

	log.Debug(LogMsgEntryRecorded, "battle_id", battleID, "event_type", eventType)
	return nil
}

// ListForBattle returns a battle's entries in replay order
func (s *service) ListForBattle(ctx context.Context, battleID uuid.UUID, eventType string, limit int) ([]Entry, error) {
	filter := Filter{Limit: limit}
	if eventType != "" {
		filter.EventType = &eventType
	}
	return s.repo.ListForBattle(ctx, battleID, filter)
}
