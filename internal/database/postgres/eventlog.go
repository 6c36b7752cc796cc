package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamarena/pk-battle/internal/eventlog"
)

type eventLogRepository struct {
	db *pgxpool.Pool
}

// NewEventLogRepository creates a new PostgreSQL state-log repository
func NewEventLogRepository(db *pgxpool.Pool) eventlog.Repository {
	return &eventLogRepository{db: db}
}

// Append stores a state-log entry
func (r *eventLogRepository) Append(ctx context.Context, entry eventlog.Entry) error {
	var eventData []byte
	if entry.EventData != nil {
		var err error
		eventData, err = json.Marshal(entry.EventData)
		if err != nil {
			return fmt.Errorf("failed to marshal event data: %w", err)
		}
	}

	serverTS := entry.ServerTimestamp
	if serverTS.IsZero() {
		serverTS = time.Now().UTC()
	}

	query := `
		INSERT INTO battle_state_log (
			battle_id, event_type, event_data, acting_user_id,
			server_timestamp, client_timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		entry.BattleID, entry.EventType, eventData, entry.ActingUserID,
		serverTS, entry.ClientTimestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append state log entry: %w", err)
	}
	return nil
}

// ListForBattle retrieves entries ordered by server timestamp ascending
func (r *eventLogRepository) ListForBattle(ctx context.Context, battleID uuid.UUID, filter eventlog.Filter) ([]eventlog.Entry, error) {
	query := `
		SELECT id, battle_id, event_type, event_data, acting_user_id,
		       server_timestamp, client_timestamp
		FROM battle_state_log
		WHERE battle_id = $1
	`
	args := []interface{}{battleID}

	if filter.EventType != nil {
		query += ` AND event_type = $2`
		args = append(args, *filter.EventType)
	}
	query += fmt.Sprintf(` ORDER BY server_timestamp ASC, id ASC LIMIT $%d`, len(args)+1)

	limit := filter.Limit
	if limit <= 0 {
		limit = eventlog.DefaultListLimit
	}
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query state log: %w", err)
	}
	defer rows.Close()

	var entries []eventlog.Entry
	for rows.Next() {
		var e eventlog.Entry
		var eventData []byte
		if err := rows.Scan(&e.ID, &e.BattleID, &e.EventType, &eventData, &e.ActingUserID, &e.ServerTimestamp, &e.ClientTimestamp); err != nil {
			return nil, err
		}
		if len(eventData) > 0 {
			if err := json.Unmarshal(eventData, &e.EventData); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
