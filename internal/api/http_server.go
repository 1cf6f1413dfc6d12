package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medibook/internal/config"
	"medibook/internal/domain"
	"medibook/internal/metrics"
	"medibook/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
)

// ProviderLister exposes the cached provider directory.
type ProviderLister interface {
	ListProviders(kind models.Kind) []models.Provider
}

// HTTPServer exposes the booking API.
type HTTPServer struct {
	cfg          config.APIConfig
	bookings     domain.BookingService
	availability domain.AvailabilityService
	providers    ProviderLister
	ready        ReadinessCheck
	server       *http.Server
	auth         *HTTPAuth
	log          zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	availability domain.AvailabilityService,
	providers ProviderLister,
	ready ReadinessCheck,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		bookings:     bookings,
		availability: availability,
		providers:    providers,
		ready:        ready,
		auth:         NewHTTPAuth(cfg),
		log:          zerolog.Nop(),
	}
	if logger != nil {
		srv.log = logger.With().Str("component", "http").Logger()
	}

	mux := http.NewServeMux()
	srv.handle(mux, "GET /healthz", "healthz", srv.handleHealth)
	srv.handle(mux, "GET /readyz", "readyz", srv.handleReady)

	srv.handle(mux, "GET /api/v1/kinds/{kind}/providers", "providers_list", srv.handleListProviders)
	srv.handle(mux, "GET /api/v1/kinds/{kind}/providers/{id}/slots", "slots", srv.handleSlots)
	srv.handle(mux, "GET /api/v1/kinds/{kind}/providers/{id}/availability", "availability_get", srv.handleGetAvailability)
	srv.handle(mux, "PUT /api/v1/kinds/{kind}/providers/{id}/availability", "availability_put", srv.handleReplaceAvailability)
	srv.handle(mux, "GET /api/v1/kinds/{kind}/providers/{id}/bookings", "provider_bookings", srv.handleProviderBookings)
	srv.handle(mux, "POST /api/v1/kinds/{kind}/bookings", "booking_create", srv.handleCreateBooking)

	srv.handle(mux, "GET /api/v1/bookings/{id}", "booking_get", srv.handleGetBooking)
	srv.handle(mux, "POST /api/v1/bookings/{id}/cancel", "booking_cancel", srv.handleCancel)
	srv.handle(mux, "POST /api/v1/bookings/{id}/reschedule", "booking_reschedule", srv.handleReschedule)
	srv.handle(mux, "POST /api/v1/bookings/{id}/confirm", "booking_confirm", srv.handleConfirm)
	srv.handle(mux, "POST /api/v1/bookings/{id}/complete", "booking_complete", srv.handleComplete)
	srv.handle(mux, "GET /api/v1/subjects/{id}/bookings", "subject_bookings", srv.handleSubjectBookings)
	srv.handle(mux, "POST /api/v1/sweep", "sweep", srv.handleSweep)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
			handlers.AllowedHeaders(corsHeaders(cfg.Auth)),
		)(handler)
	}
	handler = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{srv.log}),
		handlers.PrintRecoveryStack(false),
	)(handler)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func corsHeaders(auth config.APIAuthConfig) []string {
	headers := []string{"Content-Type", headerActorID, headerActorRole, headerActorKind, headerRequestID}
	for _, h := range []string{auth.HeaderAPIKey, auth.HeaderExtra} {
		if h = strings.TrimSpace(h); h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// handle registers h and counts requests under endpoint.
func (s *HTTPServer) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(endpoint)
		h(w, r)
	}))
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.log.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
	// headerActorKind обязателен для роли provider: ID врачей и анализов пересекаются
	headerActorKind = "X-Actor-Kind"
	headerRequestID = "X-Request-ID"
)

type ctxKey int

const requestIDKey ctxKey = iota

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := strings.TrimSpace(r.Header.Get(headerRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		s.log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// recoveryLogger adapts zerolog to gorilla's RecoveryHandlerLogger.
type recoveryLogger struct {
	log zerolog.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	l.log.Error().Msg(strings.TrimSpace(fmt.Sprintln(args...)))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
