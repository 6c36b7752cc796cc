package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streamarena/pk-battle/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// Battle lifecycle event types carried on the bus. Broadcast and notification
// subscribers fan these out to viewers; the durable state log is written
// separately and synchronously by the services.
const (
	BattleInvited      Type = "battle.invited"
	BattleAccepted     Type = "battle.accepted"
	BattleRejected     Type = "battle.rejected"
	BattleStarted      Type = "battle.started"
	BattleTimerSynced  Type = "battle.timer_synced"
	BattleStreamStatus Type = "battle.stream_status"
	BattleRoundEnded   Type = "battle.round_ended"
	BattleEnded        Type = "battle.ended"
	BattleScoreUpdated Type = "battle.score_updated"
)

// BattlePayloadV1 is the typed payload for battle lifecycle events
type BattlePayloadV1 struct {
	BattleID     string   `json:"battle_id"`
	ChallengerID string   `json:"challenger_id"`
	OpponentID   string   `json:"opponent_id"`
	Status       string   `json:"status"`
	Phase        string   `json:"battle_phase"`
	CurrentRound int      `json:"current_round"`
	WinnerID     string   `json:"winner_id,omitempty"`
	StreamIDs    []string `json:"stream_ids"`
	Timestamp    int64    `json:"timestamp"`
}

// TimerSyncPayloadV1 is the typed payload for authoritative timer broadcasts.
// Clients must converge on these values and never decide countdown expiry locally.
type TimerSyncPayloadV1 struct {
	BattleID           string   `json:"battle_id"`
	ServerTime         int64    `json:"server_time"`
	CountdownRemaining int      `json:"countdown_remaining"`
	Phase              string   `json:"battle_phase"`
	StreamIDs          []string `json:"stream_ids"`
}

// ScoreUpdatePayloadV1 is the typed payload for score change broadcasts
type ScoreUpdatePayloadV1 struct {
	BattleID        string   `json:"battle_id"`
	ChallengerScore int64    `json:"challenger_score"`
	OpponentScore   int64    `json:"opponent_score"`
	SenderUserID    string   `json:"sender_user_id"`
	GiftID          string   `json:"gift_id"`
	GiftValue       int64    `json:"gift_value"`
	StreamIDs       []string `json:"stream_ids"`
	Timestamp       int64    `json:"timestamp"`
}

// StreamStatusPayloadV1 is the typed payload for stream connectivity broadcasts
type StreamStatusPayloadV1 struct {
	BattleID  string   `json:"battle_id"`
	UserID    string   `json:"user_id"`
	Status    string   `json:"status"`
	StreamIDs []string `json:"stream_ids"`
	Timestamp int64    `json:"timestamp"`
}

// NewBattleEvent builds a lifecycle event from the battle aggregate
func NewBattleEvent(eventType Type, b *domain.Battle) Event {
	winner := ""
	if b.WinnerID != nil {
		winner = *b.WinnerID
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: BattlePayloadV1{
			BattleID:     b.ID.String(),
			ChallengerID: b.ChallengerID,
			OpponentID:   b.OpponentID,
			Status:       string(b.Status),
			Phase:        string(b.Phase),
			CurrentRound: b.CurrentRound,
			WinnerID:     winner,
			StreamIDs:    b.ParticipantStreamIDs(),
			Timestamp:    time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewTimerSyncEvent builds the authoritative countdown broadcast
func NewTimerSyncEvent(b *domain.Battle, serverTime time.Time, countdownRemaining int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BattleTimerSynced,
		Payload: TimerSyncPayloadV1{
			BattleID:           b.ID.String(),
			ServerTime:         serverTime.Unix(),
			CountdownRemaining: countdownRemaining,
			Phase:              string(b.Phase),
			StreamIDs:          b.ParticipantStreamIDs(),
		},
		Metadata: nil,
	}
}

// NewScoreUpdateEvent builds a score change broadcast
func NewScoreUpdateEvent(b *domain.Battle, rec *domain.ScoreRecord) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BattleScoreUpdated,
		Payload: ScoreUpdatePayloadV1{
			BattleID:        b.ID.String(),
			ChallengerScore: b.ChallengerScore,
			OpponentScore:   b.OpponentScore,
			SenderUserID:    rec.SenderUserID,
			GiftID:          rec.GiftID,
			GiftValue:       rec.TotalValue,
			StreamIDs:       b.ParticipantStreamIDs(),
			Timestamp:       time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewStreamStatusEvent builds a stream connectivity broadcast
func NewStreamStatusEvent(b *domain.Battle, userID string, status domain.StreamHealth) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    BattleStreamStatus,
		Payload: StreamStatusPayloadV1{
			BattleID:  b.ID.String(),
			UserID:    userID,
			Status:    string(status),
			StreamIDs: b.ParticipantStreamIDs(),
			Timestamp: time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers execute synchronously; slow subscribers belong behind the
	// resilient publisher, not here.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
