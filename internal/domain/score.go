package domain

import (
	"time"

	"github.com/google/uuid"
)

// BattleSide identifies which party of a battle a score is credited to
type BattleSide string

const (
	SideChallenger BattleSide = "CHALLENGER"
	SideOpponent   BattleSide = "OPPONENT"
)

// ScoreRecord is one gift-driven scoring event. Records are created once per
// funded gift transaction and never mutated. SourceTransactionID is the
// idempotency key linking the record to the wallet transaction that funded it.
type ScoreRecord struct {
	ID                  uuid.UUID  `json:"id"`
	BattleID            uuid.UUID  `json:"battle_id"`
	SenderUserID        string     `json:"sender_user_id"`
	StreamerID          string     `json:"streamer_id"`
	Side                BattleSide `json:"side"`
	GiftID              string     `json:"gift_id"`
	GiftUnitValue       int64      `json:"gift_unit_value"`
	Quantity            int        `json:"quantity"`
	TotalValue          int64      `json:"total_value"`
	SourceTransactionID string     `json:"source_transaction_id"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Gift is a catalog entry describing a sendable gift and its coin value.
// Values are non-negative integers in the smallest coin unit.
type Gift struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CoinValue int64  `json:"coin_value"`
}

// SenderTotal is one row of the per-sender score breakdown
type SenderTotal struct {
	SenderUserID string `json:"sender_user_id"`
	GiftCount    int    `json:"gift_count"`
	TotalValue   int64  `json:"total_value"`
}

// BattleScores is the query result for a battle's current cumulative totals
type BattleScores struct {
	BattleID        uuid.UUID     `json:"battle_id"`
	ChallengerScore int64         `json:"challenger_score"`
	OpponentScore   int64         `json:"opponent_score"`
	TopSenders      []SenderTotal `json:"top_senders"`
}

// GiftStats is the aggregate gift view without per-sender breakdown
type GiftStats struct {
	BattleID            uuid.UUID `json:"battle_id"`
	ChallengerGiftCount int       `json:"challenger_gift_count"`
	OpponentGiftCount   int       `json:"opponent_gift_count"`
	TotalGiftValue      int64     `json:"total_gift_value"`
}
