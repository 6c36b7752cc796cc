package broadcast

import (
	"context"
	"fmt"

	"github.com/streamarena/pk-battle/internal/event"
	"github.com/streamarena/pk-battle/internal/logger"
	"github.com/streamarena/pk-battle/internal/metrics"
)

// Subscriber fans battle lifecycle events out to one channel per participating
// stream, cohost streams included, so viewers of any related stream receive
// every state change.
type Subscriber struct {
	broadcaster Broadcaster
}

// NewSubscriber creates a broadcast subscriber
func NewSubscriber(broadcaster Broadcaster) *Subscriber {
	return &Subscriber{broadcaster: broadcaster}
}

// Register attaches the subscriber to every battle lifecycle event type
func (s *Subscriber) Register(bus event.Bus) {
	for _, eventType := range []event.Type{
		event.BattleInvited,
		event.BattleAccepted,
		event.BattleRejected,
		event.BattleStarted,
		event.BattleTimerSynced,
		event.BattleStreamStatus,
		event.BattleRoundEnded,
		event.BattleEnded,
		event.BattleScoreUpdated,
	} {
		bus.Subscribe(eventType, s.Handle)
	}
}

// Handle publishes the event payload to each participating stream's channel
func (s *Subscriber) Handle(ctx context.Context, e event.Event) error {
	log := logger.FromContext(ctx)

	var failed int
	for _, streamID := range payloadStreamIDs(e.Payload) {
		if err := s.broadcaster.Publish(ctx, streamID, e); err != nil {
			metrics.BroadcastFailures.Inc()
			log.Warn(LogMsgBroadcastFailed, "channel", streamID, "event_type", e.Type, "error", err)
			failed++
			continue
		}
		log.Debug(LogMsgBroadcastSent, "channel", streamID, "event_type", e.Type)
	}

	if failed > 0 {
		return fmt.Errorf("%d broadcast channels failed for %s", failed, e.Type)
	}
	return nil
}

func payloadStreamIDs(payload interface{}) []string {
	switch p := payload.(type) {
	case event.BattlePayloadV1:
		return p.StreamIDs
	case event.TimerSyncPayloadV1:
		return p.StreamIDs
	case event.ScoreUpdatePayloadV1:
		return p.StreamIDs
	case event.StreamStatusPayloadV1:
		return p.StreamIDs
	default:
		return nil
	}
}
