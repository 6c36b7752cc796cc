package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/streamarena/pk-battle/internal/battle"
	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/eventlog"
)

// BattleHandler serves the battle lifecycle endpoints
type BattleHandler struct {
	service  battle.Service
	eventLog eventlog.Service
}

// NewBattleHandler creates a new battle handler
func NewBattleHandler(service battle.Service, eventLog eventlog.Service) *BattleHandler {
	return &BattleHandler{service: service, eventLog: eventLog}
}

// InviteRequest represents a battle invite request
type InviteRequest struct {
	ChallengerStreamID   string     `json:"challenger_stream_id"`
	OpponentUserID       string     `json:"opponent_user_id" validate:"required"`
	OpponentStreamID     string     `json:"opponent_stream_id"`
	TotalRounds          int        `json:"total_rounds" validate:"omitempty,min=1,max=10"`
	RoundDurationMinutes int        `json:"round_duration_minutes" validate:"omitempty,min=1,max=60"`
	ClientTimestamp      *time.Time `json:"client_timestamp"`
}

// BattleResponse represents a battle state response
type BattleResponse struct {
	Message string         `json:"message,omitempty"`
	Battle  *domain.Battle `json:"battle"`
}

// HandleInvite handles battle invite requests
func (h *BattleHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req InviteRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Battle invite"); err != nil {
		return
	}

	b, err := h.service.Invite(r.Context(), battle.InviteInput{
		InviterUserID:        userID,
		ChallengerStreamID:   req.ChallengerStreamID,
		OpponentUserID:       req.OpponentUserID,
		OpponentStreamID:     req.OpponentStreamID,
		TotalRounds:          req.TotalRounds,
		RoundDurationMinutes: req.RoundDurationMinutes,
		ClientTimestamp:      req.ClientTimestamp,
	})
	if err != nil {
		respondServiceError(w, r, "Battle invite failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, BattleResponse{Message: MsgInviteSentSuccess, Battle: b})
}

// RespondRequest represents an accept request body
type RespondRequest struct {
	OpponentStreamID string     `json:"opponent_stream_id"`
	ClientTimestamp  *time.Time `json:"client_timestamp"`
}

// HandleAccept handles invite accept requests
func (h *BattleHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req RespondRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Battle accept"); err != nil {
		return
	}

	b, err := h.service.Accept(r.Context(), battleID, userID, req.OpponentStreamID, req.ClientTimestamp)
	if err != nil {
		respondServiceError(w, r, "Battle accept failed", err)
		return
	}

	respondJSON(w, http.StatusOK, BattleResponse{Message: MsgInviteAcceptedSuccess, Battle: b})
}

// HandleReject handles invite reject requests
func (h *BattleHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req RespondRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Battle reject"); err != nil {
		return
	}

	b, err := h.service.Reject(r.Context(), battleID, userID, req.ClientTimestamp)
	if err != nil {
		respondServiceError(w, r, "Battle reject failed", err)
		return
	}

	respondJSON(w, http.StatusOK, BattleResponse{Message: MsgInviteRejectedSuccess, Battle: b})
}

// SyncTimerRequest represents a timer sync request
type SyncTimerRequest struct {
	ClientTimestamp *time.Time `json:"client_timestamp"`
}

// HandleSyncTimer handles authoritative timer sync requests
func (h *BattleHandler) HandleSyncTimer(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req SyncTimerRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Timer sync"); err != nil {
		return
	}

	state, err := h.service.SyncTimer(r.Context(), battleID, userID, req.ClientTimestamp)
	if err != nil {
		respondServiceError(w, r, "Timer sync failed", err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// StreamStatusRequest represents a stream connectivity report
type StreamStatusRequest struct {
	Status          string                 `json:"status" validate:"required,streamhealth"`
	ErrorData       map[string]interface{} `json:"error_data"`
	ClientTimestamp *time.Time             `json:"client_timestamp"`
}

// HandleStreamStatus handles stream connectivity updates
func (h *BattleHandler) HandleStreamStatus(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req StreamStatusRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Stream status"); err != nil {
		return
	}

	b, err := h.service.UpdateStreamStatus(r.Context(), battle.StreamStatusInput{
		BattleID:        battleID,
		UserID:          userID,
		Status:          domain.StreamHealth(strings.ToUpper(req.Status)),
		ErrorData:       req.ErrorData,
		ClientTimestamp: req.ClientTimestamp,
	})
	if err != nil {
		respondServiceError(w, r, "Stream status update failed", err)
		return
	}

	respondJSON(w, http.StatusOK, BattleResponse{Message: MsgStreamStatusRecorded, Battle: b})
}

// HandleEndRound handles force-end round requests
func (h *BattleHandler) HandleEndRound(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req SyncTimerRequest
	if err := DecodeAndValidateRequest(r, w, &req, "End round"); err != nil {
		return
	}

	b, err := h.service.EndRound(r.Context(), battleID, userID, req.ClientTimestamp)
	if err != nil {
		respondServiceError(w, r, "End round failed", err)
		return
	}

	respondJSON(w, http.StatusOK, BattleResponse{Message: MsgRoundEndedSuccess, Battle: b})
}

// HandleEndBattle handles battle end requests
func (h *BattleHandler) HandleEndBattle(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req SyncTimerRequest
	if err := DecodeAndValidateRequest(r, w, &req, "End battle"); err != nil {
		return
	}

	b, err := h.service.EndBattle(r.Context(), battleID, userID, req.ClientTimestamp)
	if err != nil {
		respondServiceError(w, r, "End battle failed", err)
		return
	}

	respondJSON(w, http.StatusOK, BattleResponse{Message: MsgBattleEndedSuccess, Battle: b})
}

// HandleGetBattle handles battle lookup requests
func (h *BattleHandler) HandleGetBattle(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}

	b, err := h.service.GetBattle(r.Context(), battleID)
	if err != nil {
		respondServiceError(w, r, "Get battle failed", err)
		return
	}

	respondJSON(w, http.StatusOK, BattleResponse{Battle: b})
}

// ActiveBattleResponse represents the active-battle lookup result
type ActiveBattleResponse struct {
	Active bool           `json:"active"`
	Battle *domain.Battle `json:"battle,omitempty"`
}

// HandleGetActiveBattle returns the battle a stream currently participates in
func (h *BattleHandler) HandleGetActiveBattle(w http.ResponseWriter, r *http.Request) {
	streamID, ok := GetQueryParam(r, w, "stream_id")
	if !ok {
		return
	}

	b, err := h.service.GetActiveBattleForStream(r.Context(), streamID)
	if err != nil {
		respondServiceError(w, r, "Get active battle failed", err)
		return
	}

	respondJSON(w, http.StatusOK, ActiveBattleResponse{Active: b != nil, Battle: b})
}

// LogEventRequest represents a client-originated state-log append.
// Server-side transitions write their own entries; this surface exists for
// client-observed events (UI state, player-side errors) that belong in the
// same replay stream.
type LogEventRequest struct {
	EventType       string                 `json:"event_type" validate:"required,min=1,max=64"`
	EventData       map[string]interface{} `json:"event_data,omitempty"`
	ClientTimestamp *time.Time             `json:"client_timestamp,omitempty"`
}

// HandleLogEvent appends a client-reported entry to a battle's state log
func (h *BattleHandler) HandleLogEvent(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req LogEventRequest
	if err := DecodeAndValidateRequest(r, w, &req, "log event"); err != nil {
		return
	}

	if err := h.eventLog.Record(r.Context(), battleID, req.EventType, req.EventData, userID, req.ClientTimestamp); err != nil {
		respondServiceError(w, r, "Log event failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, SuccessResponse{Message: MsgEventLoggedSuccess})
}

// EventLogResponse represents a state-log replay result
type EventLogResponse struct {
	BattleID string           `json:"battle_id"`
	Entries  []eventlog.Entry `json:"entries"`
}

// HandleGetEvents returns a battle's state log in replay order
func (h *BattleHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	limit, ok := GetOptionalIntParam(r, w, "limit", eventlog.DefaultListLimit)
	if !ok {
		return
	}
	eventType := GetOptionalQueryParam(r, "type", "")

	entries, err := h.eventLog.ListForBattle(r.Context(), battleID, eventType, limit)
	if err != nil {
		respondServiceError(w, r, "Get battle events failed", err)
		return
	}

	respondJSON(w, http.StatusOK, EventLogResponse{BattleID: battleID.String(), Entries: entries})
}
