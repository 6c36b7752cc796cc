package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Lookup errors
	ErrMsgBattleNotFound = "battle not found"
	ErrMsgStreamNotFound = "stream not found"
	ErrMsgUserNotFound   = "user not found"
	ErrMsgGiftNotFound   = "gift not found"

	// Authorization errors
	ErrMsgNotStreamOwner     = "user does not own this stream"
	ErrMsgNotParticipant     = "user is not a participant in this battle"
	ErrMsgNotInvitedOpponent = "only the invited opponent may respond to this invite"

	// State-conflict errors
	ErrMsgInviteNoLongerValid = "invite no longer valid"
	ErrMsgBattleNotActive     = "battle is not active"
	ErrMsgBattleAlreadyActive = "stream already has an active battle"
	ErrMsgBattleAlreadyEnded  = "battle has already ended"
	ErrMsgRoundNotActive      = "no round is currently active"

	// Scoring errors
	ErrMsgScoreRecordNotFound  = "score record not found"
	ErrMsgUnknownStreamer      = "streamer is not a party to this battle"
	ErrMsgDuplicateTransaction = "transaction already consumed"
	ErrMsgWalletDebitFailed    = "wallet debit failed"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Lookup errors
	ErrBattleNotFound = errors.New(ErrMsgBattleNotFound)
	ErrStreamNotFound = errors.New(ErrMsgStreamNotFound)
	ErrUserNotFound   = errors.New(ErrMsgUserNotFound)
	ErrGiftNotFound   = errors.New(ErrMsgGiftNotFound)

	// Authorization errors
	ErrNotStreamOwner     = errors.New(ErrMsgNotStreamOwner)
	ErrNotParticipant     = errors.New(ErrMsgNotParticipant)
	ErrNotInvitedOpponent = errors.New(ErrMsgNotInvitedOpponent)

	// State-conflict errors
	ErrInviteNoLongerValid = errors.New(ErrMsgInviteNoLongerValid)
	ErrBattleNotActive     = errors.New(ErrMsgBattleNotActive)
	ErrBattleAlreadyActive = errors.New(ErrMsgBattleAlreadyActive)
	ErrBattleAlreadyEnded  = errors.New(ErrMsgBattleAlreadyEnded)
	ErrRoundNotActive      = errors.New(ErrMsgRoundNotActive)

	// Scoring errors
	ErrScoreRecordNotFound  = errors.New(ErrMsgScoreRecordNotFound)
	ErrUnknownStreamer      = errors.New(ErrMsgUnknownStreamer)
	ErrDuplicateTransaction = errors.New(ErrMsgDuplicateTransaction)
	ErrWalletDebitFailed    = errors.New(ErrMsgWalletDebitFailed)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
