package handler

import (
	"net/http"
	"time"

	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/score"
)

// ScoreHandler serves the gift scoring endpoints
type ScoreHandler struct {
	service score.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(service score.Service) *ScoreHandler {
	return &ScoreHandler{service: service}
}

// RecordGiftRequest represents a gift send attributed to a battle side
type RecordGiftRequest struct {
	StreamerID          string     `json:"streamer_id" validate:"required"`
	GiftID              string     `json:"gift_id" validate:"required"`
	Quantity            int        `json:"quantity" validate:"required,min=1,max=10000"`
	SourceTransactionID string     `json:"source_transaction_id"`
	ClientTimestamp     *time.Time `json:"client_timestamp"`
}

// RecordGiftResponse represents the applied score record
type RecordGiftResponse struct {
	Message string              `json:"message"`
	Record  *domain.ScoreRecord `json:"record"`
}

// HandleRecordGift handles gift scoring requests
func (h *ScoreHandler) HandleRecordGift(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	userID, ok := ActingUserID(r, w)
	if !ok {
		return
	}

	var req RecordGiftRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Record gift"); err != nil {
		return
	}

	rec, err := h.service.RecordGift(r.Context(), score.RecordGiftInput{
		BattleID:            battleID,
		SenderUserID:        userID,
		StreamerID:          req.StreamerID,
		GiftID:              req.GiftID,
		Quantity:            req.Quantity,
		SourceTransactionID: req.SourceTransactionID,
		ClientTimestamp:     req.ClientTimestamp,
	})
	if err != nil {
		respondServiceError(w, r, "Record gift failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, RecordGiftResponse{Message: MsgGiftRecordedSuccess, Record: rec})
}

// HandleGetScores returns the battle's cumulative totals and top senders
func (h *ScoreHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}
	limit, ok := GetOptionalIntParam(r, w, "limit", score.DefaultTopSendersLimit)
	if !ok {
		return
	}

	scores, err := h.service.GetScores(r.Context(), battleID, limit)
	if err != nil {
		respondServiceError(w, r, "Get scores failed", err)
		return
	}

	respondJSON(w, http.StatusOK, scores)
}

// HandleGetGiftStats returns the aggregate gift view for a battle
func (h *ScoreHandler) HandleGetGiftStats(w http.ResponseWriter, r *http.Request) {
	battleID, ok := BattleIDFromRequest(r, w)
	if !ok {
		return
	}

	stats, err := h.service.GetGiftStats(r.Context(), battleID)
	if err != nil {
		respondServiceError(w, r, "Get gift stats failed", err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
