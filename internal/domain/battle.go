package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BattleStatus is the coarse lifecycle status of a battle
type BattleStatus string

const (
	BattleStatusPending   BattleStatus = "PENDING"
	BattleStatusActive    BattleStatus = "ACTIVE"
	BattleStatusFinished  BattleStatus = "FINISHED"
	BattleStatusCancelled BattleStatus = "CANCELLED"
)

// BattlePhase is the finer-grained phase within an active battle
type BattlePhase string

const (
	BattlePhaseCountdown BattlePhase = "COUNTDOWN"
	BattlePhaseActive    BattlePhase = "ACTIVE"
	BattlePhasePaused    BattlePhase = "PAUSED"
	BattlePhaseEnded     BattlePhase = "ENDED"
)

// StreamHealth tracks the connectivity of a participant's live stream
type StreamHealth string

const (
	StreamHealthConnected    StreamHealth = "CONNECTED"
	StreamHealthDisconnected StreamHealth = "DISCONNECTED"
	StreamHealthReconnecting StreamHealth = "RECONNECTING"
)

// Defaults applied when an invite omits the optional timing parameters
const (
	DefaultCountdownSeconds     = 10
	DefaultRoundDurationMinutes = 5
	DefaultTotalRounds          = 3
)

// RoundScore is a per-round snapshot appended when a round ends
type RoundScore struct {
	Round           int   `json:"round"`
	ChallengerScore int64 `json:"challenger_score"`
	OpponentScore   int64 `json:"opponent_score"`
}

// ErrorLogEntry is an append-only diagnostic record attached to a battle
type ErrorLogEntry struct {
	UserID    string                 `json:"user_id"`
	ErrorData map[string]interface{} `json:"error_data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Battle is one PK competition instance between two live-streamers
type Battle struct {
	ID          uuid.UUID `json:"id"`
	ChallengeID *string   `json:"challenge_id,omitempty"`

	ChallengerID       string   `json:"challenger_id"`
	OpponentID         string   `json:"opponent_id"`
	ChallengerStreamID string   `json:"challenger_stream_id"`
	OpponentStreamID   string   `json:"opponent_stream_id,omitempty"`
	CohostStreamIDs    []string `json:"cohost_stream_ids,omitempty"`

	Status BattleStatus `json:"status"`
	Phase  BattlePhase  `json:"battle_phase"`

	CountdownSeconds     int        `json:"countdown_duration_seconds"`
	CountdownStartedAt   *time.Time `json:"countdown_started_at,omitempty"`
	RoundDurationMinutes int        `json:"round_duration_minutes"`
	RoundStartedAt       *time.Time `json:"round_started_at,omitempty"`
	RoundEndsAt          *time.Time `json:"round_ends_at,omitempty"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	EndedAt              *time.Time `json:"ended_at,omitempty"`
	LastActivityAt       time.Time  `json:"last_activity_at"`
	ServerSyncTime       time.Time  `json:"server_sync_time"`

	TotalRounds  int          `json:"total_rounds"`
	CurrentRound int          `json:"current_round"`
	RoundActive  bool         `json:"is_round_active"`
	RoundScores  []RoundScore `json:"round_scores,omitempty"`

	ChallengerGoals int `json:"challenger_goals"`
	OpponentGoals   int `json:"opponent_goals"`

	ChallengerScore     int64 `json:"challenger_score"`
	OpponentScore       int64 `json:"opponent_score"`
	ChallengerGiftCount int   `json:"challenger_gift_count"`
	OpponentGiftCount   int   `json:"opponent_gift_count"`
	TotalGiftValue      int64 `json:"total_gift_value"`

	ChallengerStreamHealth StreamHealth    `json:"challenger_stream_status"`
	OpponentStreamHealth   StreamHealth    `json:"opponent_stream_status"`
	ErrorLogs              []ErrorLogEntry `json:"error_logs,omitempty"`

	WinnerID *string `json:"winner_id,omitempty"`

	Config   map[string]interface{} `json:"battle_config,omitempty"`
	Settings map[string]interface{} `json:"battle_settings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBattle creates a pending battle for an invite. The caller is responsible
// for authorization and the single-active-battle check.
func NewBattle(challengerID, challengerStreamID, opponentID, opponentStreamID string, totalRounds, roundDurationMinutes int, now time.Time) *Battle {
	if totalRounds <= 0 {
		totalRounds = DefaultTotalRounds
	}
	if roundDurationMinutes <= 0 {
		roundDurationMinutes = DefaultRoundDurationMinutes
	}
	return &Battle{
		ID:                     uuid.New(),
		ChallengerID:           CanonicalUserID(challengerID),
		OpponentID:             CanonicalUserID(opponentID),
		ChallengerStreamID:     challengerStreamID,
		OpponentStreamID:       opponentStreamID,
		Status:                 BattleStatusPending,
		Phase:                  BattlePhaseCountdown,
		CountdownSeconds:       DefaultCountdownSeconds,
		RoundDurationMinutes:   roundDurationMinutes,
		TotalRounds:            totalRounds,
		CurrentRound:           1,
		ChallengerStreamHealth: StreamHealthConnected,
		OpponentStreamHealth:   StreamHealthConnected,
		LastActivityAt:         now,
		ServerSyncTime:         now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

// IsParticipant reports whether the user is the challenger or the opponent
func (b *Battle) IsParticipant(userID string) bool {
	return SameUser(b.ChallengerID, userID) || SameUser(b.OpponentID, userID)
}

// ParticipantStreams returns every stream associated with the battle as a
// tagged reference, host and opponent first, cohosts after
func (b *Battle) ParticipantStreams() []StreamRef {
	refs := make([]StreamRef, 0, 2+len(b.CohostStreamIDs))
	refs = append(refs, StreamRef{Kind: StreamKindHost, ID: b.ChallengerStreamID})
	if b.OpponentStreamID != "" {
		refs = append(refs, StreamRef{Kind: StreamKindOpponent, ID: b.OpponentStreamID})
	}
	for _, id := range b.CohostStreamIDs {
		refs = append(refs, StreamRef{Kind: StreamKindCohost, ID: id})
	}
	return refs
}

// ParticipantStreamIDs returns the untagged stream IDs for broadcast fan-out
func (b *Battle) ParticipantStreamIDs() []string {
	refs := b.ParticipantStreams()
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids
}

// Accept transitions a pending battle into the active countdown phase.
// Only the invited opponent may accept.
func (b *Battle) Accept(userID, opponentStreamID string, now time.Time) error {
	if !SameUser(b.OpponentID, userID) {
		return ErrNotInvitedOpponent
	}
	if b.Status != BattleStatusPending {
		return ErrInviteNoLongerValid
	}
	b.Status = BattleStatusActive
	b.Phase = BattlePhaseCountdown
	b.CountdownStartedAt = &now
	b.StartedAt = &now
	if b.OpponentStreamID == "" && opponentStreamID != "" {
		b.OpponentStreamID = opponentStreamID
	}
	b.touch(now)
	return nil
}

// Reject cancels a pending battle. Only the invited opponent may reject.
func (b *Battle) Reject(userID string, now time.Time) error {
	if !SameUser(b.OpponentID, userID) {
		return ErrNotInvitedOpponent
	}
	if b.Status != BattleStatusPending {
		return ErrInviteNoLongerValid
	}
	b.Status = BattleStatusCancelled
	b.Phase = BattlePhaseEnded
	b.EndedAt = &now
	b.touch(now)
	return nil
}

// CountdownRemaining computes the authoritative seconds left in the countdown.
// Returns zero once the countdown has expired or was never started.
func (b *Battle) CountdownRemaining(now time.Time) int {
	if b.Phase != BattlePhaseCountdown || b.CountdownStartedAt == nil {
		return 0
	}
	elapsed := int(now.Sub(*b.CountdownStartedAt).Seconds())
	remaining := b.CountdownSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StartRound flips the battle into the active phase and arms the round timer.
// Used both when the countdown expires and when a new round begins.
func (b *Battle) StartRound(now time.Time) {
	ends := now.Add(time.Duration(b.RoundDurationMinutes) * time.Minute)
	b.Phase = BattlePhaseActive
	b.RoundActive = true
	b.RoundStartedAt = &now
	b.RoundEndsAt = &ends
	b.touch(now)
}

// RoundExpired reports whether the current round's timer has run out
func (b *Battle) RoundExpired(now time.Time) bool {
	return b.RoundActive && b.RoundEndsAt != nil && !now.Before(*b.RoundEndsAt)
}

// roundBase returns the cumulative score already credited to earlier rounds
func (b *Battle) roundBase() (challenger, opponent int64) {
	for _, rs := range b.RoundScores {
		challenger += rs.ChallengerScore
		opponent += rs.OpponentScore
	}
	return challenger, opponent
}

// EndRound snapshots the current round, awards a goal to the higher-scoring
// side (ties award neither), and either starts the next round or leaves the
// battle ready for End when the final round just closed. Returns true when
// this was the last round.
func (b *Battle) EndRound(now time.Time) bool {
	baseChallenger, baseOpponent := b.roundBase()
	roundChallenger := b.ChallengerScore - baseChallenger
	roundOpponent := b.OpponentScore - baseOpponent

	b.RoundScores = append(b.RoundScores, RoundScore{
		Round:           b.CurrentRound,
		ChallengerScore: roundChallenger,
		OpponentScore:   roundOpponent,
	})

	switch {
	case roundChallenger > roundOpponent:
		b.ChallengerGoals++
	case roundOpponent > roundChallenger:
		b.OpponentGoals++
	}

	b.RoundActive = false
	b.RoundStartedAt = nil
	b.RoundEndsAt = nil

	if b.CurrentRound < b.TotalRounds {
		b.CurrentRound++
		b.StartRound(now)
		return false
	}
	b.touch(now)
	return true
}

// End finishes the battle and determines the winner by comparing the final
// cumulative scores. Equal scores leave WinnerID nil.
func (b *Battle) End(now time.Time) {
	switch {
	case b.ChallengerScore > b.OpponentScore:
		winner := b.ChallengerID
		b.WinnerID = &winner
	case b.OpponentScore > b.ChallengerScore:
		winner := b.OpponentID
		b.WinnerID = &winner
	}
	b.Status = BattleStatusFinished
	b.Phase = BattlePhaseEnded
	b.RoundActive = false
	b.RoundEndsAt = nil
	b.EndedAt = &now
	b.touch(now)
}

// SetStreamHealth updates the stream status for one participant. Non-participants
// are rejected. Disconnect diagnostics are appended to the battle's error log.
func (b *Battle) SetStreamHealth(userID string, health StreamHealth, errorData map[string]interface{}, now time.Time) error {
	switch {
	case SameUser(b.ChallengerID, userID):
		b.ChallengerStreamHealth = health
	case SameUser(b.OpponentID, userID):
		b.OpponentStreamHealth = health
	default:
		return ErrNotParticipant
	}
	if health == StreamHealthDisconnected && errorData != nil {
		b.ErrorLogs = append(b.ErrorLogs, ErrorLogEntry{
			UserID:    CanonicalUserID(userID),
			ErrorData: errorData,
			Timestamp: now,
		})
	}
	b.touch(now)
	return nil
}

// Terminal reports whether the battle has reached a final status
func (b *Battle) Terminal() bool {
	return b.Status == BattleStatusFinished || b.Status == BattleStatusCancelled
}

func (b *Battle) touch(now time.Time) {
	b.LastActivityAt = now
	b.ServerSyncTime = now
	b.UpdatedAt = now
}

// MarshalRoundScores converts round snapshots to JSONB
func MarshalRoundScores(scores []RoundScore) ([]byte, error) {
	return json.Marshal(scores)
}

// UnmarshalRoundScores converts JSONB to round snapshots
func UnmarshalRoundScores(data []byte) ([]RoundScore, error) {
	var scores []RoundScore
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// MarshalErrorLogs converts error log entries to JSONB
func MarshalErrorLogs(logs []ErrorLogEntry) ([]byte, error) {
	return json.Marshal(logs)
}

// UnmarshalErrorLogs converts JSONB to error log entries
func UnmarshalErrorLogs(data []byte) ([]ErrorLogEntry, error) {
	var logs []ErrorLogEntry
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
