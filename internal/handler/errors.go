package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Path and query parameter error messages
	ErrMsgInvalidBattleID   = "Invalid battle ID"
	ErrMsgMissingBattleID   = "Missing battle ID"
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"

	// Identity error messages
	ErrMsgMissingUserIdentity = "Missing user identity"
)

// Success messages for API responses
const (
	MsgInviteSentSuccess     = "Battle invite sent"
	MsgInviteAcceptedSuccess = "Battle accepted, countdown started"
	MsgInviteRejectedSuccess = "Battle invite rejected"
	MsgStreamStatusRecorded  = "Stream status recorded"
	MsgRoundEndedSuccess     = "Round ended"
	MsgBattleEndedSuccess    = "Battle ended"
	MsgGiftRecordedSuccess   = "Gift recorded"
	MsgEventLoggedSuccess    = "Event logged"
)
