package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/streamarena/pk-battle/internal/challenge"
	"github.com/streamarena/pk-battle/internal/concurrency"
	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/event"
	"github.com/streamarena/pk-battle/internal/eventlog"
	"github.com/streamarena/pk-battle/internal/logger"
	"github.com/streamarena/pk-battle/internal/metrics"
	"github.com/streamarena/pk-battle/internal/notify"
	"github.com/streamarena/pk-battle/internal/repository"
)

// InviteInput is the command to open a battle invite
type InviteInput struct {
	InviterUserID        string
	ChallengerStreamID   string
	OpponentUserID       string
	OpponentStreamID     string
	TotalRounds          int
	RoundDurationMinutes int
	ClientTimestamp      *time.Time
}

// StreamStatusInput is the command to report a participant's stream health
type StreamStatusInput struct {
	BattleID        uuid.UUID
	UserID          string
	Status          domain.StreamHealth
	ErrorData       map[string]interface{}
	ClientTimestamp *time.Time
}

// TimerState is the authoritative clock snapshot returned by SyncTimer
type TimerState struct {
	Battle                *domain.Battle `json:"battle"`
	ServerTime            time.Time      `json:"server_time"`
	CountdownRemaining    int            `json:"countdown_remaining"`
	RoundSecondsRemaining int            `json:"round_seconds_remaining"`
}

// Service handles the battle lifecycle business logic
type Service interface {
	// Invite opens a pending battle. The inviter must own the challenger
	// stream, and that stream must not already be in a battle.
	Invite(ctx context.Context, input InviteInput) (*domain.Battle, error)

	// Accept transitions a pending battle into the active countdown. Only
	// the invited opponent may accept.
	Accept(ctx context.Context, battleID uuid.UUID, userID, opponentStreamID string, clientTimestamp *time.Time) (*domain.Battle, error)

	// Reject cancels a pending battle. Only the invited opponent may reject.
	Reject(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error)

	// SyncTimer recomputes the authoritative countdown and round clocks,
	// applying any phase transition the elapsed time implies
	SyncTimer(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*TimerState, error)

	// UpdateStreamStatus records a participant's stream connectivity change
	UpdateStreamStatus(ctx context.Context, input StreamStatusInput) (*domain.Battle, error)

	// EndRound force-ends the current round at a participant's request
	EndRound(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error)

	// EndBattle finishes the battle and determines the winner
	EndBattle(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error)

	// GetBattle retrieves a battle by ID
	GetBattle(ctx context.Context, battleID uuid.UUID) (*domain.Battle, error)

	// GetActiveBattleForStream returns the pending or active battle a stream
	// participates in, or nil when there is none
	GetActiveBattleForStream(ctx context.Context, streamID string) (*domain.Battle, error)

	// Progress applies pending timer expirations without an acting user.
	// Used by the background sweeper.
	Progress(ctx context.Context, battleID uuid.UUID) error
}

type service struct {
	battleRepo repository.Battle
	streamRepo repository.Stream
	eventLog   eventlog.Service
	publisher  event.Bus
	notifier   notify.Notifier
	bridge     challenge.Bridge
	locks      *concurrency.LockManager
}

// NewService creates a new battle lifecycle service
func NewService(battleRepo repository.Battle, streamRepo repository.Stream, eventLog eventlog.Service, publisher event.Bus, notifier notify.Notifier, bridge challenge.Bridge, locks *concurrency.LockManager) Service {
	return &service{
		battleRepo: battleRepo,
		streamRepo: streamRepo,
		eventLog:   eventLog,
		publisher:  publisher,
		notifier:   notifier,
		bridge:     bridge,
		locks:      locks,
	}
}

// Invite opens a pending battle
func (s *service) Invite(ctx context.Context, input InviteInput) (*domain.Battle, error) {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()

	if input.OpponentUserID == "" {
		return nil, fmt.Errorf("%w: opponent user id is required", domain.ErrInvalidInput)
	}
	if domain.SameUser(input.InviterUserID, input.OpponentUserID) {
		return nil, fmt.Errorf("%w: cannot battle yourself", domain.ErrInvalidInput)
	}

	challengerStream, err := s.resolveChallengerStream(ctx, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.battleRepo.GetActiveBattleForStream(ctx, challengerStream.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrBattleAlreadyActive
	}
	if challengerStream.PKMode {
		// Flag survived a crash or missed cleanup; reconcile before reuse
		log.Warn(LogMsgStalePKModeCleared, "stream_id", challengerStream.ID)
		if err := s.streamRepo.SetPKMode(ctx, challengerStream.ID, false); err != nil {
			log.Error(LogMsgPKModeUpdateFailed, "stream_id", challengerStream.ID, "error", err)
		}
	}

	opponentStreamID := input.OpponentStreamID
	if opponentStreamID == "" {
		// Best-effort; the accept call captures it if the opponent is not
		// live yet
		opponentStream, err := s.streamRepo.GetLiveStreamForUser(ctx, input.OpponentUserID)
		if err != nil {
			log.Warn(LogMsgOpponentStreamUnknown, "opponent_user_id", input.OpponentUserID, "error", err)
		} else {
			opponentStreamID = opponentStream.ID
		}
	}

	b := domain.NewBattle(input.InviterUserID, challengerStream.ID, input.OpponentUserID, opponentStreamID, input.TotalRounds, input.RoundDurationMinutes, now)
	b.CohostStreamIDs = challengerStream.CohostStreamIDs

	if err := s.battleRepo.CreateBattle(ctx, b); err != nil {
		return nil, err
	}
	metrics.BattlesCreated.Inc()

	s.recordStateLog(ctx, b.ID, domain.EventTypeBattleCreated, map[string]interface{}{
		"challenger_id":        b.ChallengerID,
		"opponent_id":          b.OpponentID,
		"challenger_stream_id": b.ChallengerStreamID,
		"total_rounds":         b.TotalRounds,
	}, input.InviterUserID, input.ClientTimestamp)

	_ = s.publisher.Publish(ctx, event.NewBattleEvent(event.BattleInvited, b))
	if err := s.notifier.Push(ctx, b.OpponentID, notify.InviteTitle, fmt.Sprintf(notify.InviteBodyFormat, b.ChallengerID), map[string]interface{}{"battle_id": b.ID.String()}); err != nil {
		log.Warn(LogMsgNotifyFailed, "user_id", b.OpponentID, "error", err)
	}

	log.Info(LogMsgBattleInvited, "battle_id", b.ID, "challenger_id", b.ChallengerID, "opponent_id", b.OpponentID)
	return b, nil
}

// Accept transitions a pending battle into the active countdown
func (s *service) Accept(ctx context.Context, battleID uuid.UUID, userID, opponentStreamID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()

	lock := s.locks.GetLock(battleID.String())
	lock.Lock()
	defer lock.Unlock()

	b, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}

	if opponentStreamID == "" && b.OpponentStreamID == "" {
		opponentStream, err := s.streamRepo.GetLiveStreamForUser(ctx, b.OpponentID)
		if err != nil {
			log.Warn(LogMsgOpponentStreamUnknown, "opponent_user_id", b.OpponentID, "error", err)
		} else {
			opponentStreamID = opponentStream.ID
		}
	}

	if err := b.Accept(userID, opponentStreamID, now); err != nil {
		return nil, err
	}
	if err := s.battleRepo.UpdateBattle(ctx, b); err != nil {
		return nil, err
	}
	metrics.BattlesAccepted.Inc()
	s.setPKMode(ctx, b, true)

	s.recordStateLog(ctx, b.ID, domain.EventTypeCountdownStarted, map[string]interface{}{
		"countdown_duration_seconds": b.CountdownSeconds,
		"opponent_stream_id":         b.OpponentStreamID,
	}, userID, clientTimestamp)

	// Every participant gets the start signal, the accepting device included:
	// it needs the authoritative countdown origin
	_ = s.publisher.Publish(ctx, event.NewBattleEvent(event.BattleAccepted, b))

	log.Info(LogMsgBattleAccepted, "battle_id", b.ID, "opponent_id", b.OpponentID)
	return b, nil
}

// Reject cancels a pending battle
func (s *service) Reject(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()

	lock := s.locks.GetLock(battleID.String())
	lock.Lock()
	defer lock.Unlock()

	b, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if err := b.Reject(userID, now); err != nil {
		return nil, err
	}
	if err := s.battleRepo.UpdateBattle(ctx, b); err != nil {
		return nil, err
	}
	metrics.BattlesRejected.Inc()
	metrics.BattlesEnded.WithLabelValues(OutcomeCancelled).Inc()

	s.recordStateLog(ctx, b.ID, domain.EventTypeBattleCancelled, map[string]interface{}{
		"reason": "invite_rejected",
	}, userID, clientTimestamp)

	_ = s.publisher.Publish(ctx, event.NewBattleEvent(event.BattleRejected, b))
	if err := s.notifier.Push(ctx, b.ChallengerID, notify.RejectTitle, fmt.Sprintf(notify.RejectBodyFormat, b.OpponentID), map[string]interface{}{"battle_id": b.ID.String()}); err != nil {
		log.Warn(LogMsgNotifyFailed, "user_id", b.ChallengerID, "error", err)
	}

	log.Info(LogMsgBattleRejected, "battle_id", b.ID)
	return b, nil
}

// SyncTimer recomputes the authoritative clocks and applies any pending
// phase transitions
func (s *service) SyncTimer(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*TimerState, error) {
	now := time.Now().UTC()

	lock := s.locks.GetLock(battleID.String())
	lock.Lock()
	defer lock.Unlock()

	b, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}
	if b.Status != domain.BattleStatusActive {
		return nil, domain.ErrBattleNotActive
	}

	s.advanceClocks(ctx, b, now)

	remaining := b.CountdownRemaining(now)
	b.ServerSyncTime = now
	b.LastActivityAt = now
	b.UpdatedAt = now
	if err := s.battleRepo.UpdateBattle(ctx, b); err != nil {
		return nil, err
	}

	s.recordStateLog(ctx, b.ID, domain.EventTypeTimerSynced, map[string]interface{}{
		"countdown_remaining": remaining,
		"battle_phase":        string(b.Phase),
	}, userID, clientTimestamp)

	_ = s.publisher.Publish(ctx, event.NewTimerSyncEvent(b, now, remaining))

	return &TimerState{
		Battle:                b,
		ServerTime:            now,
		CountdownRemaining:    remaining,
		RoundSecondsRemaining: roundSecondsRemaining(b, now),
	}, nil
}

// UpdateStreamStatus records a participant's stream connectivity change
func (s *service) UpdateStreamStatus(ctx context.Context, input StreamStatusInput) (*domain.Battle, error) {
	log := logger.FromContext(ctx)
	now := time.Now().UTC()

	lock := s.locks.GetLock(input.BattleID.String())
	lock.Lock()
	defer lock.Unlock()

	b, err := s.battleRepo.GetBattle(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}
	if err := b.SetStreamHealth(input.UserID, input.Status, input.ErrorData, now); err != nil {
		return nil, err
	}
	if err := s.battleRepo.UpdateBattle(ctx, b); err != nil {
		return nil, err
	}

	eventType := domain.EventTypeStreamConnected
	if input.Status == domain.StreamHealthDisconnected {
		eventType = domain.EventTypeStreamDisconnected
	}
	s.recordStateLog(ctx, b.ID, eventType, map[string]interface{}{
		"user_id": input.UserID,
		"status":  string(input.Status),
	}, input.UserID, input.ClientTimestamp)

	_ = s.publisher.Publish(ctx, event.NewStreamStatusEvent(b, input.UserID, input.Status))

	log.Info(LogMsgStreamStatusChanged, "battle_id", b.ID, "user_id", input.UserID, "status", input.Status)
	return b, nil
}

// EndRound force-ends the current round
func (s *service) EndRound(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	now := time.Now().UTC()

	lock := s.locks.GetLock(battleID.String())
	lock.Lock()
	defer lock.Unlock()

	b, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}
	if b.Status != domain.BattleStatusActive {
		return nil, domain.ErrBattleNotActive
	}
	if !b.RoundActive {
		return nil, domain.ErrRoundNotActive
	}

	last := s.closeRound(ctx, b, userID, clientTimestamp, now)
	if last {
		b.End(now)
		s.finish(ctx, b, userID, clientTimestamp)
	}
	if err := s.battleRepo.UpdateBattle(ctx, b); err != nil {
		return nil, err
	}
	if !last {
		_ = s.publisher.Publish(ctx, event.NewBattleEvent(event.BattleRoundEnded, b))
	}
	return b, nil
}

// EndBattle finishes the battle and determines the winner
func (s *service) EndBattle(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	now := time.Now().UTC()

	lock := s.locks.GetLock(battleID.String())
	lock.Lock()
	defer lock.Unlock()

	b, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if !b.IsParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}
	if b.Terminal() {
		return nil, domain.ErrBattleAlreadyEnded
	}
	if b.Status != domain.BattleStatusActive {
		return nil, domain.ErrBattleNotActive
	}

	b.End(now)
	s.finish(ctx, b, userID, clientTimestamp)
	if err := s.battleRepo.UpdateBattle(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBattle retrieves a battle by ID
func (s *service) GetBattle(ctx context.Context, battleID uuid.UUID) (*domain.Battle, error) {
	return s.battleRepo.GetBattle(ctx, battleID)
}

// GetActiveBattleForStream returns the pending or active battle for a stream
func (s *service) GetActiveBattleForStream(ctx context.Context, streamID string) (*domain.Battle, error) {
	return s.battleRepo.GetActiveBattleForStream(ctx, streamID)
}

// Progress applies pending timer expirations without an acting user
func (s *service) Progress(ctx context.Context, battleID uuid.UUID) error {
	now := time.Now().UTC()

	lock := s.locks.GetLock(battleID.String())
	lock.Lock()
	defer lock.Unlock()

	b, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return err
	}
	if b.Status != domain.BattleStatusActive {
		return nil
	}

	s.advanceClocks(ctx, b, now)
	b.ServerSyncTime = now
	b.UpdatedAt = now
	return s.battleRepo.UpdateBattle(ctx, b)
}

// advanceClocks applies every transition the elapsed time implies: countdown
// expiry starts the first round, expired rounds close in order, and the final
// round's expiry ends the battle. Clients never decide expiry themselves.
func (s *service) advanceClocks(ctx context.Context, b *domain.Battle, now time.Time) {
	log := logger.FromContext(ctx)

	if b.Phase == domain.BattlePhaseCountdown && b.CountdownRemaining(now) == 0 && b.CountdownStartedAt != nil {
		b.StartRound(now)
		s.recordStateLog(ctx, b.ID, domain.EventTypeBattleStarted, map[string]interface{}{
			"auto_started": true,
			"round":        b.CurrentRound,
		}, "", nil)
		_ = s.publisher.Publish(ctx, event.NewBattleEvent(event.BattleStarted, b))
		log.Info(LogMsgBattleStarted, "battle_id", b.ID)
	}

	for b.Status == domain.BattleStatusActive && b.RoundExpired(now) {
		if s.closeRound(ctx, b, "", nil, now) {
			b.End(now)
			s.finish(ctx, b, "", nil)
			return
		}
		_ = s.publisher.Publish(ctx, event.NewBattleEvent(event.BattleRoundEnded, b))
	}
}

// closeRound snapshots and ends the current round. Returns true when it was
// the final round.
func (s *service) closeRound(ctx context.Context, b *domain.Battle, actingUserID string, clientTimestamp *time.Time, now time.Time) bool {
	endedRound := b.CurrentRound
	last := b.EndRound(now)
	metrics.RoundsEnded.Inc()

	snapshot := b.RoundScores[len(b.RoundScores)-1]
	s.recordStateLog(ctx, b.ID, domain.EventTypeRoundEnded, map[string]interface{}{
		"round":            endedRound,
		"challenger_score": snapshot.ChallengerScore,
		"opponent_score":   snapshot.OpponentScore,
		"challenger_goals": b.ChallengerGoals,
		"opponent_goals":   b.OpponentGoals,
	}, actingUserID, clientTimestamp)

	logger.FromContext(ctx).Info(LogMsgRoundEnded, "battle_id", b.ID, "round", endedRound, "last", last)
	return last
}

// finish runs the end-of-battle side effects. Challenge sync and PK-mode
// cleanup are best-effort and never fail the ending itself.
func (s *service) finish(ctx context.Context, b *domain.Battle, actingUserID string, clientTimestamp *time.Time) {
	log := logger.FromContext(ctx)

	outcome := OutcomeTie
	winner := ""
	if b.WinnerID != nil {
		winner = *b.WinnerID
		if domain.SameUser(winner, b.ChallengerID) {
			outcome = OutcomeChallenger
		} else {
			outcome = OutcomeOpponent
		}
	}
	metrics.BattlesEnded.WithLabelValues(outcome).Inc()

	s.recordStateLog(ctx, b.ID, domain.EventTypeBattleEnded, map[string]interface{}{
		"winner_id":        winner,
		"challenger_score": b.ChallengerScore,
		"opponent_score":   b.OpponentScore,
		"challenger_goals": b.ChallengerGoals,
		"opponent_goals":   b.OpponentGoals,
	}, actingUserID, clientTimestamp)

	_ = s.publisher.Publish(ctx, event.NewBattleEvent(event.BattleEnded, b))

	if err := s.bridge.SyncOutcome(ctx, challenge.Outcome{
		BattleID:        b.ID,
		ChallengeID:     b.ChallengeID,
		WinnerID:        b.WinnerID,
		ChallengerScore: b.ChallengerScore,
		OpponentScore:   b.OpponentScore,
	}); err != nil {
		metrics.ChallengeSyncFailures.Inc()
		log.Warn(LogMsgChallengeSyncFailed, "battle_id", b.ID, "error", err)
	}

	s.setPKMode(ctx, b, false)
	log.Info(LogMsgBattleEnded, "battle_id", b.ID, "outcome", outcome, "winner_id", winner)
}

// setPKMode flips the PK-mode flag on both participant streams, best-effort
func (s *service) setPKMode(ctx context.Context, b *domain.Battle, enabled bool) {
	for _, streamID := range []string{b.ChallengerStreamID, b.OpponentStreamID} {
		if streamID == "" {
			continue
		}
		if err := s.streamRepo.SetPKMode(ctx, streamID, enabled); err != nil {
			logger.FromContext(ctx).Warn(LogMsgPKModeUpdateFailed, "stream_id", streamID, "enabled", enabled, "error", err)
		}
	}
}

// resolveChallengerStream finds the stream the invite is issued from and
// verifies ownership
func (s *service) resolveChallengerStream(ctx context.Context, input InviteInput) (*domain.Stream, error) {
	if input.ChallengerStreamID != "" {
		stream, err := s.streamRepo.GetStream(ctx, input.ChallengerStreamID)
		if err != nil {
			return nil, err
		}
		if !stream.OwnedBy(input.InviterUserID) {
			return nil, domain.ErrNotStreamOwner
		}
		return stream, nil
	}
	return s.streamRepo.GetLiveStreamForUser(ctx, input.InviterUserID)
}

// recordStateLog appends a state-log entry, logging append failures without
// failing the mutation that already committed
func (s *service) recordStateLog(ctx context.Context, battleID uuid.UUID, eventType string, data map[string]interface{}, actingUserID string, clientTimestamp *time.Time) {
	if err := s.eventLog.Record(ctx, battleID, eventType, data, actingUserID, clientTimestamp); err != nil {
		logger.FromContext(ctx).Error(LogMsgStateLogWriteFailed, "battle_id", battleID, "event_type", eventType, "error", err)
	}
}

func roundSecondsRemaining(b *domain.Battle, now time.Time) int {
	if !b.RoundActive || b.RoundEndsAt == nil {
		return 0
	}
	remaining := int(b.RoundEndsAt.Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
