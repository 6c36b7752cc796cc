package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	// ARRANGE
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/battles/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/battles/{id}", "200"))

	req := httptest.NewRequest(http.MethodGet, "/battles/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	// ACT
	r.ServeHTTP(rec, req)

	// ASSERT
	require.Equal(t, http.StatusOK, rec.Code)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/battles/{id}", "200"))
	assert.Equal(t, before+1, after)
}

func TestRoutePattern_FallsBackToRawPath(t *testing.T) {
	// ARRANGE
	req := httptest.NewRequest(http.MethodGet, "/unrouted", nil)

	// ACT + ASSERT
	assert.Equal(t, "/unrouted", routePattern(req))
}
