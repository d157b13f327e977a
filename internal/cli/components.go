package cli

import (
	"context"
	"log/slog"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/archive"
	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
)

// NewReporter creates the Gemini-backed reporter. It returns nil, and reports
// stay disabled, when no API key is configured.
func NewReporter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (reconcile.Reporter, error) {
	apiKey := cfg.GetAPIKey(cfg.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	if apiKey == "" {
		logger.Debug("no Gemini API key configured, reports disabled")
		return nil, nil
	}

	gen, err := insight.NewGeminiGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}
	analyst := insight.NewAnalyst(gen, gen.Model(), logger.With("system", "insight"))
	if cfg.Gemini.Temperature != nil {
		analyst = analyst.WithTemperature(*cfg.Gemini.Temperature)
	}
	return analyst, nil
}

// NewArchiver creates the feed archiver. Without a bucket it returns a
// NopArchiver. The returned close function is always safe to call.
func NewArchiver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (archive.Archiver, func() error, error) {
	if cfg.Archive.Bucket == "" {
		return archive.NopArchiver{}, func() error { return nil }, nil
	}

	gcs, err := archive.NewGCSArchiver(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("archiving feeds", "bucket", cfg.Archive.Bucket, "prefix", cfg.Archive.Prefix)
	return gcs, gcs.Close, nil
}
