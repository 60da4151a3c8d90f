package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/simaogato/assetledger-backend/internal/adapter/report"
	"github.com/simaogato/assetledger-backend/internal/domain"
	"github.com/simaogato/assetledger-backend/internal/usecase/gains"
)

// GainReporter builds the annual realized gain report
type GainReporter interface {
	GenerateGainReport(ctx context.Context, year int, method domain.CostBasisMethod) (*gains.GainReport, error)
}

// Config holds server configuration
type Config struct {
	Addr     string
	Token    string // bearer token for /reports, open when empty
	Currency string
	Reports  GainReporter
	Log      zerolog.Logger
}

// Server serves the HTTP export endpoints
type Server struct {
	router   *chi.Mux
	server   *http.Server
	reports  GainReporter
	token    string
	currency string
	log      zerolog.Logger
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		reports:  cfg.Reports,
		token:    cfg.Token,
		currency: cfg.Currency,
		log:      cfg.Log.With().Str("component", "http").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/reports", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/gains/{year}.csv", s.handleGainReportCSV)
	})
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGainReportCSV serves GET /reports/gains/{year}.csv?method=FIFO|HIFO
func (s *Server) handleGainReportCSV(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year <= 0 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	method, err := domain.ParseCostBasisMethod(r.URL.Query().Get("method"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	gainReport, err := s.reports.GenerateGainReport(r.Context(), year, method)
	if err != nil {
		s.log.Error().Err(err).Int("year", year).Msg("Failed to generate gain report")
		writeError(w, statusFor(err), err.Error())
		return
	}

	filename := fmt.Sprintf("btc_gains_%d_%s.csv", year, strings.ToLower(string(method)))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if err := report.NewCSVSink(w, s.currency).Write(gainReport); err != nil {
		s.log.Error().Err(err).Int("year", year).Msg("Failed to write gain report")
	}
}

// authMiddleware requires "Authorization: Bearer <token>" when a token is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
