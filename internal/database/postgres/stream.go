package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/repository"
)

type streamRepository struct {
	db *pgxpool.Pool
}

// NewStreamRepository creates a new PostgreSQL stream directory repository
func NewStreamRepository(db *pgxpool.Pool) repository.Stream {
	return &streamRepository{db: db}
}

// GetStream retrieves a stream by ID
func (r *streamRepository) GetStream(ctx context.Context, streamID string) (*domain.Stream, error) {
	query := `
		SELECT id, owner_user_id, is_live, pk_mode, cohost_stream_ids, created_at, updated_at
		FROM streams
		WHERE id = $1
	`
	return r.scanStream(r.db.QueryRow(ctx, query, streamID))
}

// GetLiveStreamForUser returns the stream a user is currently broadcasting on
func (r *streamRepository) GetLiveStreamForUser(ctx context.Context, userID string) (*domain.Stream, error) {
	query := `
		SELECT id, owner_user_id, is_live, pk_mode, cohost_stream_ids, created_at, updated_at
		FROM streams
		WHERE owner_user_id = $1 AND is_live
		ORDER BY updated_at DESC
		LIMIT 1
	`
	return r.scanStream(r.db.QueryRow(ctx, query, userID))
}

// SetPKMode flips the stream's PK-mode flag
func (r *streamRepository) SetPKMode(ctx context.Context, streamID string, enabled bool) error {
	query := `UPDATE streams SET pk_mode = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, streamID, enabled)
	if err != nil {
		return fmt.Errorf("failed to set pk mode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStreamNotFound
	}
	return nil
}

func (r *streamRepository) scanStream(row pgx.Row) (*domain.Stream, error) {
	var s domain.Stream
	var cohosts []byte

	err := row.Scan(&s.ID, &s.OwnerUserID, &s.Live, &s.PKMode, &cohosts, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStreamNotFound
		}
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}

	if len(cohosts) > 0 {
		if err := json.Unmarshal(cohosts, &s.CohostStreamIDs); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
