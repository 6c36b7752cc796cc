package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamarena/pk-battle/internal/domain"
)

// Score defines the interface for score record data access
type Score interface {
	// ApplyScoreRecord atomically inserts the record and increments the
	// owning battle's score/gift counters in a single transaction. Returns
	// false without error when the record's SourceTransactionID was already
	// consumed (idempotent replay).
	ApplyScoreRecord(ctx context.Context, rec *domain.ScoreRecord) (bool, error)

	// GetBySourceTransaction returns the record created for a wallet
	// transaction, or domain.ErrScoreRecordNotFound when absent
	GetBySourceTransaction(ctx context.Context, sourceTransactionID string) (*domain.ScoreRecord, error)

	// TopSenders returns the per-sender breakdown for a battle, sorted by
	// total value descending, limited to the given count
	TopSenders(ctx context.Context, battleID uuid.UUID, limit int) ([]domain.SenderTotal, error)
}

// Gift defines the interface for the gift catalog lookup
type Gift interface {
	GetGift(ctx context.Context, giftID string) (*domain.Gift, error)
}
