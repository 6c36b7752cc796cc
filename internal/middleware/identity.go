package middleware

import (
	"context"
	"net/http"

	"github.com/streamarena/pk-battle/internal/logger"
)

type contextKey string

const userIDKey contextKey = "acting_user_id"

// Identity extracts the acting user's ID from the gateway-set header and
// attaches it to the request context. Requests without an identity still pass
// through; handlers that require one reject them.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(HeaderUserID)
			if userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
				logger.FromContext(ctx).Debug(LogMsgIdentityAttached, "user_id", userID)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext returns the acting user's ID, or empty when the request
// carried no identity
func UserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}
