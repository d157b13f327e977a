// Package logging provides structured logging utilities.
//
// The default format is Maven-style with colors:
// [LEVEL] [SYSTEM] [HH:MM:SS] message key=value
//
// "json" and "text" formats fall back to the slog built-in handlers,
// which suit log shippers better than terminals.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
)

// NewLogger creates a structured logger based on config, writing to stdout
func NewLogger(cfg config.LoggingConfig) *slog.Logger {
	return NewLoggerTo(os.Stdout, cfg)
}

// NewLoggerTo creates a structured logger writing to w
func NewLoggerTo(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = NewMavenHandler(w, opts)
	}

	return slog.New(handler)
}

// NewLoggerWithSystem creates a logger with a system prefix (e.g., "reconcile", "api", "dashboard")
func NewLoggerWithSystem(cfg config.LoggingConfig, system string) *slog.Logger {
	logger := NewLogger(cfg)
	return logger.With("system", system)
}

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
