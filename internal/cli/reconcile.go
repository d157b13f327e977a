package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/logging"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// RunReconcile reconciles two feed files and prints the outcome to w.
func RunReconcile(ctx context.Context, cfg *config.Config, flags ReconcileFlags, w io.Writer) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	bank, err := os.ReadFile(flags.BankPath)
	if err != nil {
		return fmt.Errorf("read bank feed: %w", err)
	}
	book, err := os.ReadFile(flags.BookPath)
	if err != nil {
		return fmt.Errorf("read book feed: %w", err)
	}

	var repo storage.Repository
	archiver, closeArchiver, err := NewArchiver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeArchiver() }()

	if flags.Save {
		store, err := storage.NewStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		repo = store
	}

	var reporter reconcile.Reporter
	if flags.Report != "" {
		reporter, err = NewReporter(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if reporter == nil {
			return fmt.Errorf("-report needs a Gemini API key: %w", reconcile.ErrReportsDisabled)
		}
	}

	svc := reconcile.NewService(repo, archiver, reporter, logger)

	bankName := filepath.Base(flags.BankPath)
	bookName := filepath.Base(flags.BookPath)
	PrintHeader(w, bankName, bookName, flags.Save)

	outcome, err := svc.Run(ctx, reconcile.Request{
		BankName: bankName,
		Bank:     bank,
		BookName: bookName,
		Book:     book,
		Persist:  flags.Save,
	})
	if err != nil {
		return err
	}

	PrintResults(w, outcome.Results, flags.Limit)
	PrintBreakdown(w, outcome.Breakdown)
	PrintSummary(w, outcome)

	if flags.Report == "" {
		return nil
	}

	kind, err := insight.ParseReportKind(flags.Report)
	if err != nil {
		return err
	}

	// Saved runs keep their report alongside the results
	if outcome.Persisted {
		report, err := svc.Report(ctx, outcome.RunID, kind)
		if err != nil {
			return err
		}
		PrintReport(w, report.Kind, report.Model, report.Content)
		return nil
	}

	content, err := svc.Analyze(ctx, outcome, kind)
	if err != nil {
		return err
	}
	PrintReport(w, string(kind), reporter.Model(), content)
	return nil
}
