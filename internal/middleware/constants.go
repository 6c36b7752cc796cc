package middleware

// Header carrying the acting user's identity, set by the API gateway after
// session authentication
const (
	HeaderUserID = "X-User-ID"
)

// Log message constants
const (
	LogMsgIdentityAttached = "Request identity attached"
)
