package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/streamarena/pk-battle/internal/domain"
	"github.com/streamarena/pk-battle/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Encode into a pooled buffer first so a marshal failure cannot leave a
	// half-written body
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and writes the mapped HTTP
// response
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	log := logger.FromContext(r.Context())
	status, message := mapServiceErrorToUserMessage(err)
	if status >= http.StatusInternalServerError {
		log.Error(opName, "error", err)
	} else {
		log.Warn(opName, "error", err)
	}
	respondError(w, status, message)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"

	// Lookup messages
	ErrMsgBattleNotFoundError = "Battle not found"
	ErrMsgStreamNotFoundError = "Stream not found"
	ErrMsgUserNotFoundError   = "User not found"
	ErrMsgGiftNotFoundError   = "Gift not found"

	// Authorization messages
	ErrMsgNotStreamOwnerError     = "You do not own this stream"
	ErrMsgNotParticipantError     = "You are not a participant in this battle"
	ErrMsgNotInvitedOpponentError = "Only the invited opponent can respond to this invite"

	// State-conflict messages
	ErrMsgInviteNoLongerValidError = "This invite is no longer valid"
	ErrMsgBattleNotActiveError     = "Battle is not active"
	ErrMsgBattleAlreadyActiveError = "This stream already has a battle in progress"
	ErrMsgBattleAlreadyEndedError  = "This battle has already ended"
	ErrMsgRoundNotActiveError      = "No round is currently active"

	// Scoring messages
	ErrMsgUnknownStreamerError = "That streamer is not part of this battle"
	ErrMsgWalletDebitError     = "Gift could not be funded"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses. Authorization, state-conflict and not-found errors return as
// structured failures; everything else collapses to a generic server error.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrBattleNotFound):
		return http.StatusNotFound, ErrMsgBattleNotFoundError
	case errors.Is(err, domain.ErrStreamNotFound):
		return http.StatusNotFound, ErrMsgStreamNotFoundError
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrGiftNotFound):
		return http.StatusNotFound, ErrMsgGiftNotFoundError
	case errors.Is(err, domain.ErrNotStreamOwner):
		return http.StatusForbidden, ErrMsgNotStreamOwnerError
	case errors.Is(err, domain.ErrNotParticipant):
		return http.StatusForbidden, ErrMsgNotParticipantError
	case errors.Is(err, domain.ErrNotInvitedOpponent):
		return http.StatusForbidden, ErrMsgNotInvitedOpponentError
	case errors.Is(err, domain.ErrInviteNoLongerValid):
		return http.StatusConflict, ErrMsgInviteNoLongerValidError
	case errors.Is(err, domain.ErrBattleNotActive):
		return http.StatusConflict, ErrMsgBattleNotActiveError
	case errors.Is(err, domain.ErrBattleAlreadyActive):
		return http.StatusConflict, ErrMsgBattleAlreadyActiveError
	case errors.Is(err, domain.ErrBattleAlreadyEnded):
		return http.StatusConflict, ErrMsgBattleAlreadyEndedError
	case errors.Is(err, domain.ErrRoundNotActive):
		return http.StatusConflict, ErrMsgRoundNotActiveError
	case errors.Is(err, domain.ErrUnknownStreamer):
		return http.StatusUnprocessableEntity, ErrMsgUnknownStreamerError
	case errors.Is(err, domain.ErrWalletDebitFailed):
		return http.StatusPaymentRequired, ErrMsgWalletDebitError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
