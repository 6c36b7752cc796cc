package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamarena/pk-battle/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")
	handled := false

	bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
		assert.Equal(t, eventType, event.Type)
		assert.Equal(t, "payload", event.Payload)
		handled = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{
		Version: EventSchemaVersion,
		Type:    eventType,
		Payload: "payload",
	})

	require.NoError(t, err)
	assert.True(t, handled, "handler was not called")
}

func TestMemoryBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")
	count := 0

	handler := func(ctx context.Context, event Event) error {
		count++
		return nil
	}

	bus.Subscribe(eventType, handler)
	bus.Subscribe(eventType, handler)

	require.NoError(t, bus.Publish(context.Background(), Event{Type: eventType}))
	assert.Equal(t, 2, count)
}

func TestMemoryBus_PublishNoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	assert.NoError(t, bus.Publish(context.Background(), Event{Type: "nobody_listens"}))
}

func TestMemoryBus_HandlerErrorsAggregated(t *testing.T) {
	bus := NewMemoryBus()
	eventType := Type("test_event")

	bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(eventType, func(ctx context.Context, event Event) error {
		return nil
	})

	err := bus.Publish(context.Background(), Event{Type: eventType})
	assert.Error(t, err)
}

func TestCalculateRetryDelay(t *testing.T) {
	base := 2 * time.Second

	assert.Equal(t, 2*time.Second, CalculateRetryDelay(base, 1))
	assert.Equal(t, 4*time.Second, CalculateRetryDelay(base, 2))
	assert.Equal(t, 16*time.Second, CalculateRetryDelay(base, 4))
}

func TestNewBattleEvent(t *testing.T) {
	b := domain.NewBattle("user-a", "stream-a", "user-b", "stream-b", 3, 5, time.Now())
	b.CohostStreamIDs = []string{"stream-c"}

	evt := NewBattleEvent(BattleInvited, b)

	payload, ok := evt.Payload.(BattlePayloadV1)
	require.True(t, ok)
	assert.Equal(t, b.ID.String(), payload.BattleID)
	assert.Equal(t, string(domain.BattleStatusPending), payload.Status)
	assert.Equal(t, []string{"stream-a", "stream-b", "stream-c"}, payload.StreamIDs)
	assert.Empty(t, payload.WinnerID)
}

func TestNewTimerSyncEvent(t *testing.T) {
	now := time.Now()
	b := domain.NewBattle("user-a", "stream-a", "user-b", "", 3, 5, now)

	evt := NewTimerSyncEvent(b, now, 7)

	payload, ok := evt.Payload.(TimerSyncPayloadV1)
	require.True(t, ok)
	assert.Equal(t, 7, payload.CountdownRemaining)
	assert.Equal(t, now.Unix(), payload.ServerTime)
	assert.Equal(t, string(domain.BattlePhaseCountdown), payload.Phase)
}
