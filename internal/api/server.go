// Package api serves playtime reports and ledger writes over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sadopc/playtime/internal/ledger"
	"github.com/sadopc/playtime/internal/metrics"
	"github.com/sadopc/playtime/internal/stats"
	"github.com/sadopc/playtime/internal/store"
)

type Server struct {
	config   Config
	ledger   *ledger.Ledger
	reporter *stats.Reporter
	server   *http.Server
	router   *mux.Router
	logger   zerolog.Logger
	now      func() time.Time
}

func NewServer(cfg Config, l *ledger.Ledger, r *stats.Reporter, logger zerolog.Logger) *Server {
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 7
	}
	if cfg.ManualSource == "" {
		cfg.ManualSource = "manual"
	}

	router := mux.NewRouter()
	s := &Server{
		config:   cfg,
		ledger:   l,
		reporter: r,
		router:   router,
		logger:   logger.With().Str("component", "api").Logger(),
		now:      func() time.Time { return store.Naive(time.Now()) },
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(loggingMiddleware(s.logger))

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.router.HandleFunc("/api/reports/daily", s.handleDailyReport).Methods("GET")
	s.router.HandleFunc("/api/playtime", s.handleOverall).Methods("GET")
	s.router.HandleFunc("/api/games/{id}", s.handleGetGame).Methods("GET")
	s.router.HandleFunc("/api/games/{id}/years/{year:[0-9]+}", s.handleGameYear).Methods("GET")
	s.router.HandleFunc("/api/games/{id}/total", s.handleManualTotal).Methods("PUT")
	s.router.HandleFunc("/api/sessions", s.handleRecordSession).Methods("POST")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.config.ListenAddr).Msg("Starting API server")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}

	return nil
}

// loggingMiddleware logs every request and counts it by route template.
func loggingMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(wrapped.statusCode)).Inc()

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("API request")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
