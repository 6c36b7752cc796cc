package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/repository"
)

type scoreRepository struct {
	db *pgxpool.Pool
}

// NewScoreRepository creates a new PostgreSQL score repository
func NewScoreRepository(db *pgxpool.Pool) repository.Score {
	return &scoreRepository{db: db}
}

// ApplyScoreRecord inserts the record and increments the battle's counters in
// one transaction. The UNIQUE constraint on source_transaction_id makes replays
// a no-op: when the insert conflicts, the battle row is left untouched.
func (r *scoreRepository) ApplyScoreRecord(ctx context.Context, rec *domain.ScoreRecord) (bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO battle_scores (
			id, battle_id, sender_user_id, streamer_id, side,
			gift_id, gift_unit_value, quantity, total_value,
			source_transaction_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (source_transaction_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, insertQuery,
		rec.ID, rec.BattleID, rec.SenderUserID, rec.StreamerID, rec.Side,
		rec.GiftID, rec.GiftUnitValue, rec.Quantity, rec.TotalValue,
		rec.SourceTransactionID, rec.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert score record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Replay of an already-consumed transaction
		return false, nil
	}

	var counterQuery string
	if rec.Side == domain.SideChallenger {
		counterQuery = `
			UPDATE battles SET
				challenger_score = challenger_score + $2,
				challenger_gift_count = challenger_gift_count + $3,
				total_gift_value = total_gift_value + $2,
				last_activity_at = $4,
				updated_at = $4
			WHERE id = $1
		`
	} else {
		counterQuery = `
			UPDATE battles SET
				opponent_score = opponent_score + $2,
				opponent_gift_count = opponent_gift_count + $3,
				total_gift_value = total_gift_value + $2,
				last_activity_at = $4,
				updated_at = $4
			WHERE id = $1
		`
	}

	tag, err = tx.Exec(ctx, counterQuery, rec.BattleID, rec.TotalValue, rec.Quantity, rec.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to increment battle counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, domain.ErrBattleNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit score record: %w", err)
	}
	return true, nil
}

// GetBySourceTransaction returns the record funded by a wallet transaction
func (r *scoreRepository) GetBySourceTransaction(ctx context.Context, sourceTransactionID string) (*domain.ScoreRecord, error) {
	query := `
		SELECT id, battle_id, sender_user_id, streamer_id, side,
		       gift_id, gift_unit_value, quantity, total_value,
		       source_transaction_id, created_at
		FROM battle_scores
		WHERE source_transaction_id = $1
	`

	var rec domain.ScoreRecord
	err := r.db.QueryRow(ctx, query, sourceTransactionID).Scan(
		&rec.ID, &rec.BattleID, &rec.SenderUserID, &rec.StreamerID, &rec.Side,
		&rec.GiftID, &rec.GiftUnitValue, &rec.Quantity, &rec.TotalValue,
		&rec.SourceTransactionID, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScoreRecordNotFound
		}
		return nil, fmt.Errorf("failed to get score record: %w", err)
	}
	return &rec, nil
}

// TopSenders returns the per-sender breakdown sorted by total value descending
func (r *scoreRepository) TopSenders(ctx context.Context, battleID uuid.UUID, limit int) ([]domain.SenderTotal, error) {
	query := `
		SELECT sender_user_id, SUM(quantity)::int, SUM(total_value)
		FROM battle_scores
		WHERE battle_id = $1
		GROUP BY sender_user_id
		ORDER BY SUM(total_value) DESC, sender_user_id ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, battleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top senders: %w", err)
	}
	defer rows.Close()

	var totals []domain.SenderTotal
	for rows.Next() {
		var t domain.SenderTotal
		if err := rows.Scan(&t.SenderUserID, &t.GiftCount, &t.TotalValue); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

type giftRepository struct {
	db *pgxpool.Pool
}

// NewGiftRepository creates a new PostgreSQL gift catalog repository
func NewGiftRepository(db *pgxpool.Pool) repository.Gift {
	return &giftRepository{db: db}
}

// GetGift retrieves a catalog entry by ID
func (r *giftRepository) GetGift(ctx context.Context, giftID string) (*domain.Gift, error) {
	query := `SELECT id, name, coin_value FROM gifts WHERE id = $1`

	var g domain.Gift
	err := r.db.QueryRow(ctx, query, giftID).Scan(&g.ID, &g.Name, &g.CoinValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGiftNotFound
		}
		return nil, fmt.Errorf("failed to get gift: %w", err)
	}
	return &g, nil
}
