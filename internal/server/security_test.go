package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_RejectsMissingKey(t *testing.T) {
	// ARRANGE
	detector := NewSuspiciousActivityDetector()
	h := AuthMiddleware("secret-key", nil, detector)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/battles/invite", nil)
	rec := httptest.NewRecorder()

	// ACT
	h.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_AcceptsCorrectKey(t *testing.T) {
	// ARRANGE
	detector := NewSuspiciousActivityDetector()
	h := AuthMiddleware("secret-key", nil, detector)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/battles/invite", nil)
	req.Header.Set(HeaderAPIKey, "secret-key")
	rec := httptest.NewRecorder()

	// ACT
	h.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware_PublicPathsBypassAuth(t *testing.T) {
	// ARRANGE
	detector := NewSuspiciousActivityDetector()
	h := AuthMiddleware("secret-key", nil, detector)(okHandler())

	for _, path := range PublicPaths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		// ACT
		h.ServeHTTP(rec, req)

		// ASSERT
		assert.Equal(t, http.StatusOK, rec.Code, "path %s should bypass auth", path)
	}
}

func TestSecurityLoggingMiddleware_RateLimitExceeded(t *testing.T) {
	// ARRANGE
	detector := NewSuspiciousActivityDetector()
	h := SecurityLoggingMiddleware(nil, detector)(okHandler())

	// Exhaust the per-IP budget
	for i := 0; i < RequestRateLimit; i++ {
		require.True(t, detector.RecordRequest("192.0.2.1"))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/battles/active", nil)
	req.RemoteAddr = "192.0.2.1:50000"
	rec := httptest.NewRecorder()

	// ACT
	h.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestExtractIP_UntrustedProxyIgnoresForwardedFor(t *testing.T) {
	// ARRANGE
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	req.Header.Set(HeaderForwardedFor, "198.51.100.7")

	// ACT
	ip := extractIP(req, []string{"10.0.0.1"})

	// ASSERT
	assert.Equal(t, "203.0.113.9", ip)
}

func TestExtractIP_TrustedProxyUsesForwardedFor(t *testing.T) {
	// ARRANGE
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set(HeaderForwardedFor, "198.51.100.7, 192.0.2.44")

	// ACT
	ip := extractIP(req, []string{"10.0.0.1"})

	// ASSERT
	assert.Equal(t, "192.0.2.44", ip)
}

func TestSecurityHeadersMiddleware_SetsHeaders(t *testing.T) {
	// ARRANGE
	h := SecurityHeadersMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	// ACT
	h.ServeHTTP(rec, req)

	// ASSERT
	assert.Equal(t, HeaderValueNoSniff, rec.Header().Get(HeaderContentType))
	assert.Equal(t, HeaderValueSameOrigin, rec.Header().Get(HeaderFrameOptions))
	assert.Equal(t, HeaderValueReferrerStrictOrigin, rec.Header().Get(HeaderReferrerPolicy))
}

func TestSanitizeHeaders_RedactsAPIKey(t *testing.T) {
	// ARRANGE
	headers := http.Header{}
	headers.Set(HeaderAPIKey, "secret-key")
	headers.Set("Content-Type", "application/json")

	// ACT
	sanitized := sanitizeHeaders(headers)

	// ASSERT
	assert.Equal(t, RedactedValue, sanitized[HeaderAPIKey])
	assert.Equal(t, "application/json", sanitized["Content-Type"])
}
