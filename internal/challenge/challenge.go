package challenge

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamarena/pk-battle/internal/logger"
)

// Outcome is the battle result mirrored into the admin-facing challenge
// ranking
type Outcome struct {
	BattleID        uuid.UUID `json:"battle_id"`
	ChallengeID     *string   `json:"challenge_id,omitempty"`
	WinnerID        *string   `json:"winner_id,omitempty"`
	ChallengerScore int64     `json:"challenger_score"`
	OpponentScore   int64     `json:"opponent_score"`
}

// Bridge mirrors battle outcomes into the separate challenge ranking system.
// Syncing is best-effort; a failure is logged and never fails battle ending.
type Bridge interface {
	SyncOutcome(ctx context.Context, outcome Outcome) error
}

// LogBridge records outcomes in the application log. The admin service
// consuming real outcomes sits behind the same interface.
type LogBridge struct{}

// NewLogBridge creates a bridge that only logs
func NewLogBridge() *LogBridge {
	return &LogBridge{}
}

// SyncOutcome logs the outcome
func (b *LogBridge) SyncOutcome(ctx context.Context, outcome Outcome) error {
	logger.FromContext(ctx).Info(LogMsgOutcomeSynced,
		"battle_id", outcome.BattleID,
		"winner_id", outcome.WinnerID,
		"challenger_score", outcome.ChallengerScore,
		"opponent_score", outcome.OpponentScore)
	return nil
}
