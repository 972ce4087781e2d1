// Package web provides the HTTP API for triggering and inspecting runs.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/conform/internal/config"
	"github.com/JonMunkholm/conform/internal/core"
	"github.com/JonMunkholm/conform/internal/metrics"
	mw "github.com/JonMunkholm/conform/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthCheck reports whether a backing store is reachable.
type HealthCheck func(ctx context.Context) error

// Server is the HTTP server for the pipeline.
type Server struct {
	service *core.Service
	metrics *metrics.Registry
	health  HealthCheck
	cfg     config.ServerConfig
	sec     config.SecurityConfig

	router *chi.Mux
	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics serves reg at /metrics.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Server) { s.metrics = reg }
}

// WithHealthCheck makes /healthz fail when check fails.
func WithHealthCheck(check HealthCheck) Option {
	return func(s *Server) { s.health = check }
}

// WithSecurity enables API key checks and trusted proxy handling.
func WithSecurity(sec config.SecurityConfig) Option {
	return func(s *Server) { s.sec = sec }
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.sec.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.sec))

		r.Get("/tables", s.handleListTables)

		r.Get("/runs/status", s.handleRunStatus)
		r.Post("/runs", s.handleRunAll)
		r.Post("/runs/{tableKey}", s.handleRunTable)
		r.Post("/bronze", s.handleLoadBronze)

		r.Post("/reset/{tableKey}", s.handleReset)
		r.Post("/reset", s.handleResetAll)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
