package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eshaffer321/ledger-reconcile/internal/api"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/dashboard"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/logging"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// DefaultDashboardPort is used by the dashboard when no -port is given.
const DefaultDashboardPort = 8081

const shutdownTimeout = 30 * time.Second

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	ctx := context.Background()

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	archiver, closeArchiver, err := NewArchiver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeArchiver() }()

	reporter, err := NewReporter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	svc := reconcile.NewService(store, archiver, reporter, logger.With("system", "reconcile"))

	apiCfg := api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		MaxUploadMB:    cfg.API.MaxUploadMB,
	}
	if flags.Port != 0 {
		apiCfg.Port = flags.Port
	}

	server := api.NewServer(apiCfg, store, svc, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}

// RunDashboard runs the read-only dashboard server.
func RunDashboard(cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "dashboard")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	port := flags.Port
	if port == 0 {
		port = DefaultDashboardPort
	}

	server := dashboard.NewServer(store, cfg.API.AllowedOrigins, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("dashboard shutdown error", slog.Any("error", err))
		}
	}()

	logger.Info("starting dashboard", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard error: %w", err)
	}

	logger.Info("dashboard stopped")
	return nil
}
