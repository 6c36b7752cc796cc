package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/middleware"
	"github.com/streamarena/pk-battle/internal/score"
)

// MockScoreService implements score.Service for testing
type MockScoreService struct {
	mock.Mock
}

func (m *MockScoreService) RecordGift(ctx context.Context, input score.RecordGiftInput) (*domain.ScoreRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoreRecord), args.Error(1)
}

func (m *MockScoreService) GetScores(ctx context.Context, battleID uuid.UUID, limit int) (*domain.BattleScores, error) {
	args := m.Called(ctx, battleID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BattleScores), args.Error(1)
}

func (m *MockScoreService) GetGiftStats(ctx context.Context, battleID uuid.UUID) (*domain.GiftStats, error) {
	args := m.Called(ctx, battleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GiftStats), args.Error(1)
}

func newScoreRouter(service score.Service) http.Handler {
	h := NewScoreHandler(service)
	r := chi.NewRouter()
	r.Use(middleware.Identity())
	r.Post("/battles/{id}/gifts", h.HandleRecordGift)
	r.Get("/battles/{id}/scores", h.HandleGetScores)
	r.Get("/battles/{id}/gift-stats", h.HandleGetGiftStats)
	return r
}

func TestHandleRecordGift_Success(t *testing.T) {
	// ARRANGE
	mockService := &MockScoreService{}
	router := newScoreRouter(mockService)
	battleID := uuid.New()
	record := &domain.ScoreRecord{
		ID:         uuid.New(),
		BattleID:   battleID,
		Side:       domain.SideChallenger,
		TotalValue: 50,
		Quantity:   5,
		CreatedAt:  time.Now().UTC(),
	}

	mockService.On("RecordGift", mock.Anything, mock.MatchedBy(func(input score.RecordGiftInput) bool {
		return input.BattleID == battleID &&
			input.SenderUserID == "carol" &&
			input.StreamerID == "alice" &&
			input.Quantity == 5
	})).Return(record, nil)

	body, _ := json.Marshal(RecordGiftRequest{
		StreamerID: "alice",
		GiftID:     "rose",
		Quantity:   5,
	})
	req := httptest.NewRequest(http.MethodPost, "/battles/"+battleID.String()+"/gifts", bytes.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "carol")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp RecordGiftResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, MsgGiftRecordedSuccess, resp.Message)
	assert.Equal(t, int64(50), resp.Record.TotalValue)
	mockService.AssertExpectations(t)
}

func TestHandleRecordGift_ZeroQuantityFailsValidation(t *testing.T) {
	// ARRANGE
	mockService := &MockScoreService{}
	router := newScoreRouter(mockService)
	battleID := uuid.New()

	body, _ := json.Marshal(RecordGiftRequest{StreamerID: "alice", GiftID: "rose", Quantity: 0})
	req := httptest.NewRequest(http.MethodPost, "/battles/"+battleID.String()+"/gifts", bytes.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "carol")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "RecordGift", mock.Anything, mock.Anything)
}

func TestHandleRecordGift_UnknownStreamer(t *testing.T) {
	// ARRANGE
	mockService := &MockScoreService{}
	router := newScoreRouter(mockService)
	battleID := uuid.New()

	mockService.On("RecordGift", mock.Anything, mock.Anything).Return(nil, domain.ErrUnknownStreamer)

	body, _ := json.Marshal(RecordGiftRequest{StreamerID: "mallory", GiftID: "rose", Quantity: 1})
	req := httptest.NewRequest(http.MethodPost, "/battles/"+battleID.String()+"/gifts", bytes.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "carol")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ErrMsgUnknownStreamerError, resp.Error)
}

func TestHandleGetScores_PassesLimit(t *testing.T) {
	// ARRANGE
	mockService := &MockScoreService{}
	router := newScoreRouter(mockService)
	battleID := uuid.New()

	mockService.On("GetScores", mock.Anything, battleID, 5).Return(&domain.BattleScores{
		BattleID:        battleID,
		ChallengerScore: 150,
		OpponentScore:   200,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/battles/"+battleID.String()+"/scores?limit=5", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.BattleScores
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(200), resp.OpponentScore)
	mockService.AssertExpectations(t)
}

func TestHandleGetGiftStats(t *testing.T) {
	// ARRANGE
	mockService := &MockScoreService{}
	router := newScoreRouter(mockService)
	battleID := uuid.New()

	mockService.On("GetGiftStats", mock.Anything, battleID).Return(&domain.GiftStats{
		BattleID:            battleID,
		ChallengerGiftCount: 3,
		OpponentGiftCount:   1,
		TotalGiftValue:      350,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/battles/"+battleID.String()+"/gift-stats", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.GiftStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(350), resp.TotalGiftValue)
}
