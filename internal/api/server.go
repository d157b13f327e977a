package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/ledger-reconcile/internal/api/handlers"
	"github.com/eshaffer321/ledger-reconcile/internal/api/middleware"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	MaxUploadMB    int
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		MaxUploadMB:    20,
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	service    *reconcile.Service
}

// NewServer creates a new API server.
// If svc is nil, upload and report endpoints will not be available.
func NewServer(cfg Config, repo storage.Repository, svc *reconcile.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		repo:    repo,
		service: svc,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// CORS
	corsConfig := middleware.DefaultCORSConfig()
	if len(s.config.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = s.config.AllowedOrigins
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Runs (historical)
		runsHandler := handlers.NewRunsHandler(s.repo, s.logger)
		r.Get("/runs", runsHandler.List)
		r.Get("/runs/{id}", runsHandler.Get)
		r.Get("/runs/{id}/results", runsHandler.Results)

		// Stats
		statsHandler := handlers.NewStatsHandler(s.repo, s.logger)
		r.Get("/stats", statsHandler.Get)

		// Reconciliation and reports
		if s.service != nil {
			reconcileHandler := handlers.NewReconcileHandler(s.repo, s.service, s.config.MaxUploadMB, s.logger)
			r.Post("/reconciliations", reconcileHandler.Create)

			reportsHandler := handlers.NewReportsHandler(s.repo, s.service, s.logger)
			r.Post("/runs/{id}/reports/{kind}", reportsHandler.Generate)
			r.Get("/runs/{id}/reports/{kind}", reportsHandler.Get)
		}
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Minute,
		WriteTimeout: 2 * time.Minute, // Report generation waits on a remote model
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
