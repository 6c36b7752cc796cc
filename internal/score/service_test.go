package score

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/streamarena/pk-battle/internal/concurrency"
	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/event"
	"github.com/streamarena/pk-battle/internal/eventlog"
)

// MockBattleRepository implements repository.Battle for testing
type MockBattleRepository struct {
	mock.Mock
}

func (m *MockBattleRepository) CreateBattle(ctx context.Context, b *domain.Battle) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBattleRepository) GetBattle(ctx context.Context, id uuid.UUID) (*domain.Battle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleRepository) UpdateBattle(ctx context.Context, b *domain.Battle) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBattleRepository) GetActiveBattleForStream(ctx context.Context, streamID string) (*domain.Battle, error) {
	args := m.Called(ctx, streamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleRepository) ListTimedOut(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockScoreRepository implements repository.Score for testing
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) ApplyScoreRecord(ctx context.Context, rec *domain.ScoreRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockScoreRepository) GetBySourceTransaction(ctx context.Context, sourceTransactionID string) (*domain.ScoreRecord, error) {
	args := m.Called(ctx, sourceTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoreRecord), args.Error(1)
}

func (m *MockScoreRepository) TopSenders(ctx context.Context, battleID uuid.UUID, limit int) ([]domain.SenderTotal, error) {
	args := m.Called(ctx, battleID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SenderTotal), args.Error(1)
}

// MockGiftRepository implements repository.Gift for testing
type MockGiftRepository struct {
	mock.Mock
}

func (m *MockGiftRepository) GetGift(ctx context.Context, giftID string) (*domain.Gift, error) {
	args := m.Called(ctx, giftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Gift), args.Error(1)
}

// MockWallet implements wallet.Wallet for testing
type MockWallet struct {
	mock.Mock
}

func (m *MockWallet) Debit(ctx context.Context, userID string, amount int64, reference string) (string, error) {
	args := m.Called(ctx, userID, amount, reference)
	return args.String(0), args.Error(1)
}

type scoreFixture struct {
	battleRepo *MockBattleRepository
	scoreRepo  *MockScoreRepository
	giftRepo   *MockGiftRepository
	wallet     *MockWallet
	service    Service
}

func newScoreFixture(t *testing.T) *scoreFixture {
	t.Helper()
	f := &scoreFixture{
		battleRepo: &MockBattleRepository{},
		scoreRepo:  &MockScoreRepository{},
		giftRepo:   &MockGiftRepository{},
		wallet:     &MockWallet{},
	}
	catalog, err := NewCatalog(f.giftRepo, 0)
	require.NoError(t, err)
	f.service = NewService(
		f.battleRepo, f.scoreRepo, catalog, f.wallet,
		eventlog.NewService(eventlog.NewMemoryRepository()),
		event.NewMemoryBus(),
		concurrency.NewLockManager(),
	)
	return f
}

func activeBattle() *domain.Battle {
	b := domain.NewBattle("alice", "stream-a", "bob", "stream-b", 3, 5, time.Now())
	b.Status = domain.BattleStatusActive
	b.Phase = domain.BattlePhaseActive
	b.RoundActive = true
	return b
}

func TestRecordGift_CreditsChallengerSide(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := activeBattle()

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)
	f.giftRepo.On("GetGift", ctx, "rose").Return(&domain.Gift{ID: "rose", Name: "Rose", CoinValue: 10}, nil)
	f.wallet.On("Debit", ctx, "carol", int64(50), mock.Anything).Return("txn-1", nil)
	f.scoreRepo.On("ApplyScoreRecord", ctx, mock.MatchedBy(func(rec *domain.ScoreRecord) bool {
		return rec.Side == domain.SideChallenger &&
			rec.TotalValue == 50 &&
			rec.Quantity == 5 &&
			rec.SourceTransactionID == "txn-1"
	})).Return(true, nil)

	// ACT
	rec, err := f.service.RecordGift(ctx, RecordGiftInput{
		BattleID:     battle.ID,
		SenderUserID: "carol",
		StreamerID:   "alice",
		GiftID:       "rose",
		Quantity:     5,
	})

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, int64(50), rec.TotalValue)
	assert.Equal(t, int64(50), battle.ChallengerScore)
	assert.Equal(t, 5, battle.ChallengerGiftCount)
	assert.Equal(t, int64(50), battle.TotalGiftValue)
	f.scoreRepo.AssertExpectations(t)
	f.wallet.AssertExpectations(t)
}

func TestRecordGift_DuplicateTransactionNotDoubleCounted(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := activeBattle()
	existing := &domain.ScoreRecord{
		ID:                  uuid.New(),
		BattleID:            battle.ID,
		Side:                domain.SideChallenger,
		TotalValue:          50,
		Quantity:            5,
		SourceTransactionID: "txn-1",
	}

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)
	f.giftRepo.On("GetGift", ctx, "rose").Return(&domain.Gift{ID: "rose", CoinValue: 10}, nil)
	f.scoreRepo.On("GetBySourceTransaction", ctx, "txn-1").Return(existing, nil)

	// ACT
	rec, err := f.service.RecordGift(ctx, RecordGiftInput{
		BattleID:            battle.ID,
		SenderUserID:        "carol",
		StreamerID:          "alice",
		GiftID:              "rose",
		Quantity:            5,
		SourceTransactionID: "txn-1",
	})

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, int64(50), rec.TotalValue)
	assert.Equal(t, int64(0), battle.ChallengerScore, "replay must not change the aggregate")
	f.wallet.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.scoreRepo.AssertNotCalled(t, "ApplyScoreRecord", mock.Anything, mock.Anything)
}

func TestRecordGift_UnknownStreamerRejected(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := activeBattle()

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)

	// ACT
	_, err := f.service.RecordGift(ctx, RecordGiftInput{
		BattleID:     battle.ID,
		SenderUserID: "carol",
		StreamerID:   "mallory",
		GiftID:       "rose",
		Quantity:     1,
	})

	// ASSERT
	assert.ErrorIs(t, err, domain.ErrUnknownStreamer)
	f.scoreRepo.AssertNotCalled(t, "ApplyScoreRecord", mock.Anything, mock.Anything)
}

func TestRecordGift_BattleNotActive(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := domain.NewBattle("alice", "stream-a", "bob", "stream-b", 3, 5, time.Now())

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)

	// ACT
	_, err := f.service.RecordGift(ctx, RecordGiftInput{
		BattleID:     battle.ID,
		SenderUserID: "carol",
		StreamerID:   "alice",
		GiftID:       "rose",
		Quantity:     1,
	})

	// ASSERT
	assert.ErrorIs(t, err, domain.ErrBattleNotActive)
}

func TestRecordGift_WalletDebitFailure(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := activeBattle()

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)
	f.giftRepo.On("GetGift", ctx, "rose").Return(&domain.Gift{ID: "rose", CoinValue: 10}, nil)
	f.wallet.On("Debit", ctx, "carol", int64(10), mock.Anything).Return("", errors.New("insufficient balance"))

	// ACT
	_, err := f.service.RecordGift(ctx, RecordGiftInput{
		BattleID:     battle.ID,
		SenderUserID: "carol",
		StreamerID:   "alice",
		GiftID:       "rose",
		Quantity:     1,
	})

	// ASSERT
	assert.ErrorIs(t, err, domain.ErrWalletDebitFailed)
	f.scoreRepo.AssertNotCalled(t, "ApplyScoreRecord", mock.Anything, mock.Anything)
	assert.Equal(t, int64(0), battle.ChallengerScore)
}

func TestRecordGift_ScoreAdditivity(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := activeBattle()

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)
	f.giftRepo.On("GetGift", ctx, "rose").Return(&domain.Gift{ID: "rose", CoinValue: 50}, nil)
	f.giftRepo.On("GetGift", ctx, "crown").Return(&domain.Gift{ID: "crown", CoinValue: 200}, nil)
	f.wallet.On("Debit", ctx, mock.Anything, mock.Anything, mock.Anything).Return(uuid.NewString(), nil).Times(4)
	f.scoreRepo.On("ApplyScoreRecord", ctx, mock.Anything).Return(true, nil)

	// ACT: three 50-value gifts to the challenger, one 200-value to the opponent
	for i := 0; i < 3; i++ {
		_, err := f.service.RecordGift(ctx, RecordGiftInput{
			BattleID: battle.ID, SenderUserID: "carol", StreamerID: "alice", GiftID: "rose", Quantity: 1,
		})
		require.NoError(t, err)
	}
	_, err := f.service.RecordGift(ctx, RecordGiftInput{
		BattleID: battle.ID, SenderUserID: "dave", StreamerID: "bob", GiftID: "crown", Quantity: 1,
	})
	require.NoError(t, err)

	// ASSERT
	assert.Equal(t, int64(150), battle.ChallengerScore)
	assert.Equal(t, int64(200), battle.OpponentScore)
	assert.Equal(t, int64(350), battle.ChallengerScore+battle.OpponentScore)
	assert.Equal(t, int64(350), battle.TotalGiftValue)
}

func TestGetScores_DefaultTopSendersLimit(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := activeBattle()
	battle.ChallengerScore = 150
	battle.OpponentScore = 200

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)
	f.scoreRepo.On("TopSenders", ctx, battle.ID, DefaultTopSendersLimit).Return([]domain.SenderTotal{
		{SenderUserID: "dave", GiftCount: 1, TotalValue: 200},
		{SenderUserID: "carol", GiftCount: 3, TotalValue: 150},
	}, nil)

	// ACT
	scores, err := f.service.GetScores(ctx, battle.ID, 0)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, int64(150), scores.ChallengerScore)
	assert.Equal(t, int64(200), scores.OpponentScore)
	require.Len(t, scores.TopSenders, 2)
	assert.Equal(t, "dave", scores.TopSenders[0].SenderUserID)
	f.scoreRepo.AssertExpectations(t)
}

func TestGetGiftStats(t *testing.T) {
	// ARRANGE
	f := newScoreFixture(t)
	ctx := context.Background()
	battle := activeBattle()
	battle.ChallengerGiftCount = 3
	battle.OpponentGiftCount = 1
	battle.TotalGiftValue = 350

	f.battleRepo.On("GetBattle", ctx, battle.ID).Return(battle, nil)

	// ACT
	stats, err := f.service.GetGiftStats(ctx, battle.ID)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ChallengerGiftCount)
	assert.Equal(t, 1, stats.OpponentGiftCount)
	assert.Equal(t, int64(350), stats.TotalGiftValue)
}

func TestCatalog_CachesLookups(t *testing.T) {
	// ARRANGE
	giftRepo := &MockGiftRepository{}
	catalog, err := NewCatalog(giftRepo, 8)
	require.NoError(t, err)
	ctx := context.Background()

	giftRepo.On("GetGift", ctx, "rose").Return(&domain.Gift{ID: "rose", CoinValue: 10}, nil).Once()

	// ACT
	first, err1 := catalog.GetGift(ctx, "rose")
	second, err2 := catalog.GetGift(ctx, "rose")

	// ASSERT
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	giftRepo.AssertExpectations(t)
}
