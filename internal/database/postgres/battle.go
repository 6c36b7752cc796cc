package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/repository"
)

const battleColumns = `
	id, challenge_id, challenger_id, opponent_id,
	challenger_stream_id, opponent_stream_id, cohost_stream_ids,
	status, battle_phase,
	countdown_seconds, countdown_started_at,
	round_duration_minutes, round_started_at, round_ends_at,
	started_at, ended_at, last_activity_at, server_sync_time,
	total_rounds, current_round, is_round_active, round_scores,
	challenger_goals, opponent_goals,
	challenger_score, opponent_score,
	challenger_gift_count, opponent_gift_count, total_gift_value,
	challenger_stream_status, opponent_stream_status, error_logs,
	winner_id, battle_config, battle_settings,
	created_at, updated_at`

type battleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a new PostgreSQL battle repository
func NewBattleRepository(db *pgxpool.Pool) repository.Battle {
	return &battleRepository{db: db}
}

// CreateBattle inserts a new battle row
func (r *battleRepository) CreateBattle(ctx context.Context, b *domain.Battle) error {
	cohosts, roundScores, errorLogs, config, settings, err := marshalBattleJSON(b)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO battles (` + battleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
		        $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37)
	`

	_, err = r.db.Exec(ctx, query,
		b.ID, b.ChallengeID, b.ChallengerID, b.OpponentID,
		b.ChallengerStreamID, b.OpponentStreamID, cohosts,
		b.Status, b.Phase,
		b.CountdownSeconds, b.CountdownStartedAt,
		b.RoundDurationMinutes, b.RoundStartedAt, b.RoundEndsAt,
		b.StartedAt, b.EndedAt, b.LastActivityAt, b.ServerSyncTime,
		b.TotalRounds, b.CurrentRound, b.RoundActive, roundScores,
		b.ChallengerGoals, b.OpponentGoals,
		b.ChallengerScore, b.OpponentScore,
		b.ChallengerGiftCount, b.OpponentGiftCount, b.TotalGiftValue,
		b.ChallengerStreamHealth, b.OpponentStreamHealth, errorLogs,
		b.WinnerID, config, settings,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isActiveStreamConflict(err) {
			return domain.ErrBattleAlreadyActive
		}
		return fmt.Errorf("failed to create battle: %w", err)
	}
	return nil
}

// GetBattle retrieves a battle by ID
func (r *battleRepository) GetBattle(ctx context.Context, id uuid.UUID) (*domain.Battle, error) {
	query := `SELECT ` + battleColumns + ` FROM battles WHERE id = $1`

	row := r.db.QueryRow(ctx, query, id)
	b, err := scanBattle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBattleNotFound
		}
		return nil, fmt.Errorf("failed to get battle: %w", err)
	}
	return b, nil
}

// UpdateBattle persists the full mutable state of a battle. Callers hold the
// per-battle lock, so last-write-wins on the whole row is safe here.
func (r *battleRepository) UpdateBattle(ctx context.Context, b *domain.Battle) error {
	cohosts, roundScores, errorLogs, config, settings, err := marshalBattleJSON(b)
	if err != nil {
		return err
	}

	query := `
		UPDATE battles SET
			opponent_stream_id = $2, cohost_stream_ids = $3,
			status = $4, battle_phase = $5,
			countdown_started_at = $6,
			round_started_at = $7, round_ends_at = $8,
			started_at = $9, ended_at = $10,
			last_activity_at = $11, server_sync_time = $12,
			current_round = $13, is_round_active = $14, round_scores = $15,
			challenger_goals = $16, opponent_goals = $17,
			challenger_score = $18, opponent_score = $19,
			challenger_gift_count = $20, opponent_gift_count = $21, total_gift_value = $22,
			challenger_stream_status = $23, opponent_stream_status = $24, error_logs = $25,
			winner_id = $26, battle_config = $27, battle_settings = $28,
			updated_at = $29
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		b.ID,
		b.OpponentStreamID, cohosts,
		b.Status, b.Phase,
		b.CountdownStartedAt,
		b.RoundStartedAt, b.RoundEndsAt,
		b.StartedAt, b.EndedAt,
		b.LastActivityAt, b.ServerSyncTime,
		b.CurrentRound, b.RoundActive, roundScores,
		b.ChallengerGoals, b.OpponentGoals,
		b.ChallengerScore, b.OpponentScore,
		b.ChallengerGiftCount, b.OpponentGiftCount, b.TotalGiftValue,
		b.ChallengerStreamHealth, b.OpponentStreamHealth, errorLogs,
		b.WinnerID, config, settings,
		b.UpdatedAt,
	)
	if err != nil {
		if isActiveStreamConflict(err) {
			return domain.ErrBattleAlreadyActive
		}
		return fmt.Errorf("failed to update battle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBattleNotFound
	}
	return nil
}

// GetActiveBattleForStream returns the battle currently pending or active for
// a stream on any side, or nil when none exists
func (r *battleRepository) GetActiveBattleForStream(ctx context.Context, streamID string) (*domain.Battle, error) {
	query := `
		SELECT ` + battleColumns + `
		FROM battles
		WHERE status IN ('PENDING', 'ACTIVE')
		  AND (challenger_stream_id = $1
		       OR opponent_stream_id = $1
		       OR cohost_stream_ids @> to_jsonb($1::text))
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := r.db.QueryRow(ctx, query, streamID)
	b, err := scanBattle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active battle for stream: %w", err)
	}
	return b, nil
}

// ListTimedOut returns active battles whose countdown or round timer expired
func (r *battleRepository) ListTimedOut(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM battles
		WHERE status = 'ACTIVE'
		  AND (
			(battle_phase = 'COUNTDOWN'
			 AND countdown_started_at IS NOT NULL
			 AND countdown_started_at + countdown_seconds * INTERVAL '1 second' < $1)
			OR (is_round_active AND round_ends_at < $1)
		  )
		ORDER BY last_activity_at ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list timed out battles: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const uniqueViolationCode = "23505"

// isActiveStreamConflict reports whether err is a unique violation on one of
// the partial indexes guarding the single open battle per stream side. The
// service checks for an active battle before writing, but the indexes close
// the race between that check and the insert or accept backfill.
func isActiveStreamConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// marshalBattleJSON converts the battle's JSONB columns
func marshalBattleJSON(b *domain.Battle) (cohosts, roundScores, errorLogs, config, settings []byte, err error) {
	if b.CohostStreamIDs == nil {
		cohosts = []byte("[]")
	} else if cohosts, err = json.Marshal(b.CohostStreamIDs); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if roundScores, err = domain.MarshalRoundScores(b.RoundScores); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if errorLogs, err = domain.MarshalErrorLogs(b.ErrorLogs); err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if b.Config != nil {
		if config, err = json.Marshal(b.Config); err != nil {
			return nil, nil, nil, nil, nil, err
		}
	}
	if b.Settings != nil {
		if settings, err = json.Marshal(b.Settings); err != nil {
			return nil, nil, nil, nil, nil, err
		}
	}
	return cohosts, roundScores, errorLogs, config, settings, nil
}

// scanBattle scans one full battle row
func scanBattle(row pgx.Row) (*domain.Battle, error) {
	var b domain.Battle
	var cohosts, roundScores, errorLogs, config, settings []byte

	err := row.Scan(
		&b.ID, &b.ChallengeID, &b.ChallengerID, &b.OpponentID,
		&b.ChallengerStreamID, &b.OpponentStreamID, &cohosts,
		&b.Status, &b.Phase,
		&b.CountdownSeconds, &b.CountdownStartedAt,
		&b.RoundDurationMinutes, &b.RoundStartedAt, &b.RoundEndsAt,
		&b.StartedAt, &b.EndedAt, &b.LastActivityAt, &b.ServerSyncTime,
		&b.TotalRounds, &b.CurrentRound, &b.RoundActive, &roundScores,
		&b.ChallengerGoals, &b.OpponentGoals,
		&b.ChallengerScore, &b.OpponentScore,
		&b.ChallengerGiftCount, &b.OpponentGiftCount, &b.TotalGiftValue,
		&b.ChallengerStreamHealth, &b.OpponentStreamHealth, &errorLogs,
		&b.WinnerID, &config, &settings,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cohosts, &b.CohostStreamIDs); err != nil {
		return nil, err
	}
	if b.RoundScores, err = domain.UnmarshalRoundScores(roundScores); err != nil {
		return nil, err
	}
	if b.ErrorLogs, err = domain.UnmarshalErrorLogs(errorLogs); err != nil {
		return nil, err
	}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &b.Config); err != nil {
			return nil, err
		}
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &b.Settings); err != nil {
			return nil, err
		}
	}
	return &b, nil
}
