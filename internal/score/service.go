package score

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/streamarena/pk-battle/internal/concurrency"
	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/event"
	"github.com/streamarena/pk-battle/internal/eventlog"
	"github.com/streamarena/pk-battle/internal/logger"
	"github.com/streamarena/pk-battle/internal/metrics"
	"github.com/streamarena/pk-battle/internal/repository"
	"github.com/streamarena/pk-battle/internal/wallet"
)

// RecordGiftInput is the command to attribute a gift to a battle side.
// SourceTransactionID is set when the sender's wallet was already debited
// upstream; when empty the service debits the wallet itself.
type RecordGiftInput struct {
	BattleID            uuid.UUID
	SenderUserID        string
	StreamerID          string
	GiftID              string
	Quantity            int
	SourceTransactionID string
	ClientTimestamp     *time.Time
}

// Service handles gift-driven score aggregation business logic
type Service interface {
	// RecordGift funds and applies one gift send. Replays of an already
	// consumed transaction return the existing record without double
	// counting.
	RecordGift(ctx context.Context, input RecordGiftInput) (*domain.ScoreRecord, error)

	// GetScores returns the battle's cumulative totals and top senders
	GetScores(ctx context.Context, battleID uuid.UUID, limit int) (*domain.BattleScores, error)

	// GetGiftStats returns the aggregate gift view without per-sender rows
	GetGiftStats(ctx context.Context, battleID uuid.UUID) (*domain.GiftStats, error)
}

type service struct {
	battleRepo repository.Battle
	scoreRepo  repository.Score
	catalog    *Catalog
	wallet     wallet.Wallet
	eventLog   eventlog.Service
	publisher  event.Bus
	locks      *concurrency.LockManager
}

// NewService creates a new score aggregation service
func NewService(battleRepo repository.Battle, scoreRepo repository.Score, catalog *Catalog, w wallet.Wallet, eventLog eventlog.Service, publisher event.Bus, locks *concurrency.LockManager) Service {
	return &service{
		battleRepo: battleRepo,
		scoreRepo:  scoreRepo,
		catalog:    catalog,
		wallet:     w,
		eventLog:   eventLog,
		publisher:  publisher,
		locks:      locks,
	}
}

// RecordGift funds and applies one gift send
func (s *service) RecordGift(ctx context.Context, input RecordGiftInput) (*domain.ScoreRecord, error) {
	log := logger.FromContext(ctx)

	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}

	lock := s.locks.GetLock(input.BattleID.String())
	lock.Lock()
	defer lock.Unlock()

	battle, err := s.battleRepo.GetBattle(ctx, input.BattleID)
	if err != nil {
		return nil, err
	}
	if battle.Status != domain.BattleStatusActive {
		return nil, domain.ErrBattleNotActive
	}

	side, err := s.resolveSide(ctx, battle, input.StreamerID)
	if err != nil {
		return nil, err
	}

	gift, err := s.catalog.GetGift(ctx, input.GiftID)
	if err != nil {
		return nil, err
	}
	totalValue := gift.CoinValue * int64(input.Quantity)

	// Already-consumed transactions short-circuit before any wallet call
	if input.SourceTransactionID != "" {
		existing, err := s.scoreRepo.GetBySourceTransaction(ctx, input.SourceTransactionID)
		if err == nil {
			metrics.DuplicateGifts.Inc()
			log.Info(LogMsgDuplicateGift, "battle_id", input.BattleID, "source_transaction_id", input.SourceTransactionID)
			return existing, nil
		}
	}

	sourceTxnID := input.SourceTransactionID
	if sourceTxnID == "" {
		reference := fmt.Sprintf("pk-battle:%s:gift:%s", input.BattleID, input.GiftID)
		sourceTxnID, err = s.wallet.Debit(ctx, input.SenderUserID, totalValue, reference)
		if err != nil {
			log.Error(LogMsgWalletDebitFailed, "error", err, "sender_user_id", input.SenderUserID, "amount", totalValue)
			return nil, fmt.Errorf("%w: %s", domain.ErrWalletDebitFailed, err.Error())
		}
	}

	rec := &domain.ScoreRecord{
		ID:                  uuid.New(),
		BattleID:            battle.ID,
		SenderUserID:        domain.CanonicalUserID(input.SenderUserID),
		StreamerID:          domain.CanonicalUserID(input.StreamerID),
		Side:                side,
		GiftID:              gift.ID,
		GiftUnitValue:       gift.CoinValue,
		Quantity:            input.Quantity,
		TotalValue:          totalValue,
		SourceTransactionID: sourceTxnID,
		CreatedAt:           time.Now().UTC(),
	}

	applied, err := s.scoreRepo.ApplyScoreRecord(ctx, rec)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race against a concurrent replay of the same transaction
		metrics.DuplicateGifts.Inc()
		log.Info(LogMsgDuplicateGift, "battle_id", input.BattleID, "source_transaction_id", sourceTxnID)
		return s.scoreRepo.GetBySourceTransaction(ctx, sourceTxnID)
	}

	s.applyToAggregate(battle, rec)

	sideLabel := MetricSideChallenger
	if side == domain.SideOpponent {
		sideLabel = MetricSideOpponent
	}
	metrics.GiftsRecorded.WithLabelValues(sideLabel).Inc()
	metrics.GiftValueRecorded.WithLabelValues(sideLabel).Add(float64(totalValue))

	if err := s.eventLog.Record(ctx, battle.ID, domain.EventTypeGiftReceived, map[string]interface{}{
		"sender_user_id": rec.SenderUserID,
		"streamer_id":    rec.StreamerID,
		"gift_id":        rec.GiftID,
		"quantity":       rec.Quantity,
		"total_value":    rec.TotalValue,
		"side":           string(side),
	}, input.SenderUserID, input.ClientTimestamp); err != nil {
		// The score is committed; the gap is visible in the application log
		log.Error(LogMsgStateLogWriteFailed, "battle_id", battle.ID, "error", err)
	}

	_ = s.publisher.Publish(ctx, event.NewScoreUpdateEvent(battle, rec))

	log.Info(LogMsgGiftRecorded,
		"battle_id", battle.ID,
		"side", side,
		"gift_id", rec.GiftID,
		"total_value", rec.TotalValue)
	return rec, nil
}

// GetScores returns the battle's cumulative totals and top senders
func (s *service) GetScores(ctx context.Context, battleID uuid.UUID, limit int) (*domain.BattleScores, error) {
	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultTopSendersLimit
	}
	senders, err := s.scoreRepo.TopSenders(ctx, battleID, limit)
	if err != nil {
		return nil, err
	}

	return &domain.BattleScores{
		BattleID:        battle.ID,
		ChallengerScore: battle.ChallengerScore,
		OpponentScore:   battle.OpponentScore,
		TopSenders:      senders,
	}, nil
}

// GetGiftStats returns the aggregate gift view
func (s *service) GetGiftStats(ctx context.Context, battleID uuid.UUID) (*domain.GiftStats, error) {
	battle, err := s.battleRepo.GetBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	return &domain.GiftStats{
		BattleID:            battle.ID,
		ChallengerGiftCount: battle.ChallengerGiftCount,
		OpponentGiftCount:   battle.OpponentGiftCount,
		TotalGiftValue:      battle.TotalGiftValue,
	}, nil
}

// resolveSide matches the credited streamer against the battle parties.
// A streamer matching neither party is an anomaly: logged, recorded in the
// state log, and rejected without affecting the battle.
func (s *service) resolveSide(ctx context.Context, battle *domain.Battle, streamerID string) (domain.BattleSide, error) {
	switch {
	case domain.SameUser(battle.ChallengerID, streamerID):
		return domain.SideChallenger, nil
	case domain.SameUser(battle.OpponentID, streamerID):
		return domain.SideOpponent, nil
	}

	logger.FromContext(ctx).Warn(LogMsgUnknownStreamer,
		"battle_id", battle.ID,
		"streamer_id", streamerID)
	if err := s.eventLog.Record(ctx, battle.ID, domain.EventTypeErrorOccurred, map[string]interface{}{
		"reason":      domain.ErrMsgUnknownStreamer,
		"streamer_id": streamerID,
	}, "", nil); err != nil {
		logger.FromContext(ctx).Error(LogMsgStateLogWriteFailed, "battle_id", battle.ID, "error", err)
	}
	return "", domain.ErrUnknownStreamer
}

// applyToAggregate mirrors the repository's counter increments onto the
// in-memory battle so the score-update broadcast carries fresh totals.
func (s *service) applyToAggregate(battle *domain.Battle, rec *domain.ScoreRecord) {
	if rec.Side == domain.SideChallenger {
		battle.ChallengerScore += rec.TotalValue
		battle.ChallengerGiftCount += rec.Quantity
	} else {
		battle.OpponentScore += rec.TotalValue
		battle.OpponentGiftCount += rec.Quantity
	}
	battle.TotalGiftValue += rec.TotalValue
}
