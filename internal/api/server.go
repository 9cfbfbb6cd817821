// Package api serves sweeps, stored results and archived artifacts over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	handlers "github.com/newthinker/bankroll/internal/api/handler/api"
	"github.com/newthinker/bankroll/internal/api/job"
	"github.com/newthinker/bankroll/internal/api/middleware"
	"github.com/newthinker/bankroll/internal/app"
	"github.com/newthinker/bankroll/internal/metrics"
	"go.uber.org/zap"
)

// Server represents the bankroll HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	jobs       *job.Store
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	APIKey         string
	MaxJobs        int           // jobs kept for polling
	MaxActiveJobs  int           // sweeps allowed to run at once
	JobTTL         time.Duration // finished jobs are dropped after this
	MetricsEnabled bool
	MetricsPath    string
}

// Dependencies are the collaborators the handlers serve from.
type Dependencies struct {
	App *app.App
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.App == nil {
		return nil, fmt.Errorf("api.NewServer: app is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 100
	}
	if cfg.MaxActiveJobs <= 0 {
		cfg.MaxActiveJobs = 4
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
		jobs:   job.NewStore(cfg.MaxJobs, cfg.JobTTL),
	}

	s.setupRoutes(cfg, deps)

	reg := deps.App.Metrics()
	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(reg)(handler)
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	auth := middleware.APIKeyAuth(cfg.APIKey)

	sweeps := handlers.NewSweepsHandler(s.jobs, deps.App, cfg.MaxActiveJobs, s.logger)
	resultsHandler := handlers.NewResultsHandler(deps.App.Results())
	artifacts := handlers.NewArtifactsHandler(deps.App.Artifacts())

	protect := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, auth(h))
	}

	protect("POST /api/v1/sweeps", sweeps.Create)
	protect("GET /api/v1/sweeps", sweeps.List)
	protect("GET /api/v1/sweeps/{id}", func(w http.ResponseWriter, r *http.Request) {
		sweeps.GetStatus(w, r, r.PathValue("id"))
	})
	protect("GET /api/v1/results", resultsHandler.List)
	protect("GET /api/v1/archive/{sweep}", func(w http.ResponseWriter, r *http.Request) {
		artifacts.List(w, r, r.PathValue("sweep"))
	})
	protect("GET /api/v1/archive/{sweep}/{name...}", func(w http.ResponseWriter, r *http.Request) {
		artifacts.Get(w, r, r.PathValue("sweep"), r.PathValue("name"))
	})

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	if cfg.MetricsEnabled {
		s.mux.Handle("GET "+cfg.MetricsPath, deps.App.Metrics().Handler())
	}
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","active_jobs":%d}`, s.jobs.Active())
}
