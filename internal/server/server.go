package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/streamarena/pk-battle/internal/battle"
	"github.com/streamarena/pk-battle/internal/config"
	"github.com/streamarena/pk-battle/internal/database"
	"github.com/streamarena/pk-battle/internal/eventlog"
	"github.com/streamarena/pk-battle/internal/handler"
	"github.com/streamarena/pk-battle/internal/logger"
	"github.com/streamarena/pk-battle/internal/metrics"
	"github.com/streamarena/pk-battle/internal/middleware"
	"github.com/streamarena/pk-battle/internal/score"
)

// Server wraps the HTTP server and its routing
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
}

// NewServer builds the router and wires all HTTP routes
func NewServer(
	cfg *config.Config,
	dbPool database.Pool,
	battleService battle.Service,
	scoreService score.Service,
	eventLogService eventlog.Service,
) *Server {
	r := chi.NewRouter()

	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(cfg.APIKey, cfg.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(cfg.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(RequestBodyLimitBytes))
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Identity())

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))
	r.Get("/version", handler.HandleVersion("pk-battle", cfg.Version))
	r.Handle("/metrics", promhttp.Handler())

	battleHandler := handler.NewBattleHandler(battleService, eventLogService)
	scoreHandler := handler.NewScoreHandler(scoreService)

	r.Route("/api/v1/battles", func(r chi.Router) {
		r.Post("/invite", battleHandler.HandleInvite)
		r.Get("/active", battleHandler.HandleGetActiveBattle)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", battleHandler.HandleGetBattle)
			r.Post("/accept", battleHandler.HandleAccept)
			r.Post("/reject", battleHandler.HandleReject)
			r.Post("/sync-timer", battleHandler.HandleSyncTimer)
			r.Post("/stream-status", battleHandler.HandleStreamStatus)
			r.Post("/end-round", battleHandler.HandleEndRound)
			r.Post("/end", battleHandler.HandleEndBattle)
			r.Post("/events", battleHandler.HandleLogEvent)
			r.Get("/events", battleHandler.HandleGetEvents)

			r.Post("/gifts", scoreHandler.HandleRecordGift)
			r.Get("/scores", scoreHandler.HandleGetScores)
			r.Get("/gift-stats", scoreHandler.HandleGetGiftStats)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		cfg: cfg,
	}
}

// Start begins listening for HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	logger.Info(LogMsgServerStarting, "addr", s.httpServer.Addr, "version", s.cfg.Version)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// responseWriter captures the status code for request logging
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware attaches a request ID and logs request lifecycle
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		log.Debug(LogMsgRequestHeaders, "headers", sanitizeHeaders(r.Header))

		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// isQuietPath reports whether a path should skip request logging
func isQuietPath(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

// sanitizeHeaders redacts sensitive header values before logging
func sanitizeHeaders(headers http.Header) map[string]string {
	sanitized := make(map[string]string, len(headers))
	for name, values := range headers {
		if strings.EqualFold(name, HeaderAPIKey) || strings.EqualFold(name, "Authorization") {
			sanitized[name] = RedactedValue
			continue
		}
		sanitized[name] = strings.Join(values, ", ")
	}
	return sanitized
}
