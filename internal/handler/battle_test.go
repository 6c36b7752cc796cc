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

	"github.com/streamarena/pk-battle/internal/battle"
	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/eventlog"
	"github.com/streamarena/pk-battle/internal/middleware"
)

// MockBattleService implements battle.Service for testing
type MockBattleService struct {
	mock.Mock
}

func (m *MockBattleService) Invite(ctx context.Context, input battle.InviteInput) (*domain.Battle, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) Accept(ctx context.Context, battleID uuid.UUID, userID, opponentStreamID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	args := m.Called(ctx, battleID, userID, opponentStreamID, clientTimestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) Reject(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	args := m.Called(ctx, battleID, userID, clientTimestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) SyncTimer(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*battle.TimerState, error) {
	args := m.Called(ctx, battleID, userID, clientTimestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*battle.TimerState), args.Error(1)
}

func (m *MockBattleService) UpdateStreamStatus(ctx context.Context, input battle.StreamStatusInput) (*domain.Battle, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) EndRound(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	args := m.Called(ctx, battleID, userID, clientTimestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) EndBattle(ctx context.Context, battleID uuid.UUID, userID string, clientTimestamp *time.Time) (*domain.Battle, error) {
	args := m.Called(ctx, battleID, userID, clientTimestamp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) GetBattle(ctx context.Context, battleID uuid.UUID) (*domain.Battle, error) {
	args := m.Called(ctx, battleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) GetActiveBattleForStream(ctx context.Context, streamID string) (*domain.Battle, error) {
	args := m.Called(ctx, streamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Battle), args.Error(1)
}

func (m *MockBattleService) Progress(ctx context.Context, battleID uuid.UUID) error {
	args := m.Called(ctx, battleID)
	return args.Error(0)
}

func newBattleRouter(service battle.Service, eventLog eventlog.Service) http.Handler {
	h := NewBattleHandler(service, eventLog)
	r := chi.NewRouter()
	r.Use(middleware.Identity())
	r.Post("/battles/invite", h.HandleInvite)
	r.Post("/battles/{id}/accept", h.HandleAccept)
	r.Get("/battles/{id}", h.HandleGetBattle)
	r.Get("/battles/active", h.HandleGetActiveBattle)
	r.Post("/battles/{id}/events", h.HandleLogEvent)
	r.Get("/battles/{id}/events", h.HandleGetEvents)
	return r
}

func testBattle() *domain.Battle {
	return domain.NewBattle("alice", "stream-a", "bob", "stream-b", 3, 5, time.Now().UTC())
}

func TestHandleInvite_Success(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	router := newBattleRouter(mockService, eventlog.NewService(eventlog.NewMemoryRepository()))
	b := testBattle()

	mockService.On("Invite", mock.Anything, mock.MatchedBy(func(input battle.InviteInput) bool {
		return input.InviterUserID == "alice" && input.OpponentUserID == "bob"
	})).Return(b, nil)

	body, _ := json.Marshal(InviteRequest{
		ChallengerStreamID: "stream-a",
		OpponentUserID:     "bob",
		TotalRounds:        3,
	})
	req := httptest.NewRequest(http.MethodPost, "/battles/invite", bytes.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "alice")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp BattleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, MsgInviteSentSuccess, resp.Message)
	assert.Equal(t, b.ID, resp.Battle.ID)
	mockService.AssertExpectations(t)
}

func TestHandleInvite_MissingIdentity(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	router := newBattleRouter(mockService, eventlog.NewService(eventlog.NewMemoryRepository()))

	body, _ := json.Marshal(InviteRequest{OpponentUserID: "bob"})
	req := httptest.NewRequest(http.MethodPost, "/battles/invite", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	mockService.AssertNotCalled(t, "Invite", mock.Anything, mock.Anything)
}

func TestHandleInvite_MissingOpponentFailsValidation(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	router := newBattleRouter(mockService, eventlog.NewService(eventlog.NewMemoryRepository()))

	req := httptest.NewRequest(http.MethodPost, "/battles/invite", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(middleware.HeaderUserID, "alice")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Fields, "opponentuserid")
}

func TestHandleAccept_UnauthorizedUserMapsToForbidden(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	router := newBattleRouter(mockService, eventlog.NewService(eventlog.NewMemoryRepository()))
	battleID := uuid.New()

	mockService.On("Accept", mock.Anything, battleID, "mallory", "", mock.Anything).
		Return(nil, domain.ErrNotInvitedOpponent)

	req := httptest.NewRequest(http.MethodPost, "/battles/"+battleID.String()+"/accept", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(middleware.HeaderUserID, "mallory")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ErrMsgNotInvitedOpponentError, resp.Error)
}

func TestHandleGetBattle_InvalidID(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	router := newBattleRouter(mockService, eventlog.NewService(eventlog.NewMemoryRepository()))

	req := httptest.NewRequest(http.MethodGet, "/battles/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetBattle_NotFound(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	router := newBattleRouter(mockService, eventlog.NewService(eventlog.NewMemoryRepository()))
	battleID := uuid.New()

	mockService.On("GetBattle", mock.Anything, battleID).Return(nil, domain.ErrBattleNotFound)

	req := httptest.NewRequest(http.MethodGet, "/battles/"+battleID.String(), nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetActiveBattle_NoneActive(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	router := newBattleRouter(mockService, eventlog.NewService(eventlog.NewMemoryRepository()))

	mockService.On("GetActiveBattleForStream", mock.Anything, "stream-a").Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/battles/active?stream_id=stream-a", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ActiveBattleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Active)
	assert.Nil(t, resp.Battle)
}

func TestHandleLogEvent_AppendsClientEntry(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	repo := eventlog.NewMemoryRepository()
	logService := eventlog.NewService(repo)
	router := newBattleRouter(mockService, logService)
	battleID := uuid.New()

	body, _ := json.Marshal(LogEventRequest{
		EventType: "client.player_error",
		EventData: map[string]interface{}{"code": "BUFFERING"},
	})
	req := httptest.NewRequest(http.MethodPost, "/battles/"+battleID.String()+"/events", bytes.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "alice")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp SuccessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, MsgEventLoggedSuccess, resp.Message)

	entries, err := logService.ListForBattle(context.Background(), battleID, "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "client.player_error", entries[0].EventType)
	require.NotNil(t, entries[0].ActingUserID)
	assert.Equal(t, "alice", *entries[0].ActingUserID)
}

func TestHandleLogEvent_MissingEventTypeFailsValidation(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	repo := eventlog.NewMemoryRepository()
	router := newBattleRouter(mockService, eventlog.NewService(repo))
	battleID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/battles/"+battleID.String()+"/events", bytes.NewReader([]byte(`{}`)))
	req.Header.Set(middleware.HeaderUserID, "alice")
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Fields, "eventtype")

	entries, err := repo.ListForBattle(context.Background(), battleID, eventlog.Filter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandleGetEvents_ReturnsReplay(t *testing.T) {
	// ARRANGE
	mockService := &MockBattleService{}
	repo := eventlog.NewMemoryRepository()
	router := newBattleRouter(mockService, eventlog.NewService(repo))
	battleID := uuid.New()

	require.NoError(t, repo.Append(context.Background(), eventlog.Entry{
		BattleID:        battleID,
		EventType:       domain.EventTypeBattleCreated,
		ServerTimestamp: time.Now().UTC(),
	}))

	req := httptest.NewRequest(http.MethodGet, "/battles/"+battleID.String()+"/events", nil)
	rec := httptest.NewRecorder()

	// ACT
	router.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusOK, rec.Code)
	var resp EventLogResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, domain.EventTypeBattleCreated, resp.Entries[0].EventType)
}
