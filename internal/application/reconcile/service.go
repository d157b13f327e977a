// Package reconcile runs reconciliations end to end: it parses the uploaded
// feeds, archives them, runs the matching engine, persists the outcome and
// produces narrative reports on request.
package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/ledger-reconcile/internal/adapters/archive"
	"github.com/eshaffer321/ledger-reconcile/internal/adapters/feed"
	"github.com/eshaffer321/ledger-reconcile/internal/adapters/insight"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/matcher"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

var (
	ErrInvalidFeed     = errors.New("invalid feed")
	ErrRunNotFound     = errors.New("run not found")
	ErrReportNotFound  = errors.New("report not found")
	ErrReportsDisabled = errors.New("report generation is not configured")
	ErrNoRepository    = errors.New("no repository configured")
)

// Reporter produces narrative reports. *insight.Analyst satisfies it.
type Reporter interface {
	Report(ctx context.Context, kind insight.ReportKind, results []ledger.Result, stats ledger.Stats) (string, error)
	Model() string
}

// Request holds the raw feeds for one run.
type Request struct {
	BankName string // Original file name, informational
	Bank     []byte
	BookName string
	Book     []byte
	Persist  bool // Save the run when a repository is configured
}

// Outcome is the complete result of one run.
type Outcome struct {
	RunID          string                 `json:"run_id"`
	CreatedAt      time.Time              `json:"created_at"`
	Results        []ledger.Result        `json:"results"`
	Stats          ledger.Stats           `json:"stats"`
	Breakdown      summary.ErrorBreakdown `json:"breakdown"`
	Persisted      bool                   `json:"persisted"`
	BankArchiveURI string                 `json:"bank_archive_uri,omitempty"`
	BookArchiveURI string                 `json:"book_archive_uri,omitempty"`
}

// Service coordinates a reconciliation run.
type Service struct {
	repo     storage.Repository // nil disables persistence
	archiver archive.Archiver
	reporter Reporter // nil disables reports
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a service. repo and reporter may be nil; a nil archiver
// means feeds are not archived.
func NewService(repo storage.Repository, archiver archive.Archiver, reporter Reporter, logger *slog.Logger) *Service {
	if archiver == nil {
		archiver = archive.NopArchiver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		archiver: archiver,
		reporter: reporter,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ReportsEnabled reports whether a reporter is configured.
func (s *Service) ReportsEnabled() bool {
	return s.reporter != nil
}

// Run reconciles the two feeds in req.
func (s *Service) Run(ctx context.Context, req Request) (*Outcome, error) {
	bank, err := feed.ParseBankCSV(bytes.NewReader(req.Bank))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeed, err)
	}
	book, err := feed.ParseBookCSV(bytes.NewReader(req.Book))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFeed, err)
	}

	outcome := &Outcome{
		RunID:     s.newID(),
		CreatedAt: s.now().UTC(),
	}
	logger := s.logger.With("run_id", outcome.RunID)

	logger.Info("feeds parsed", "bank_records", len(bank), "book_records", len(book))

	outcome.BankArchiveURI = s.archive(ctx, logger, outcome.RunID, "bank.csv", req.Bank)
	outcome.BookArchiveURI = s.archive(ctx, logger, outcome.RunID, "book.csv", req.Book)

	outcome.Results, outcome.Stats = matcher.Reconcile(bank, book)
	outcome.Breakdown = summary.Breakdown(outcome.Results)

	logger.Info("reconciliation complete",
		"matched", outcome.Stats.MatchedCount,
		"potential", outcome.Breakdown.PotentialCount,
		"unmatched_bank", outcome.Stats.UnmatchedBankCount,
		"unmatched_book", outcome.Stats.UnmatchedBookCount,
		"diff", outcome.Stats.DiffAmount.StringFixed(2))

	if !req.Persist {
		return outcome, nil
	}
	if s.repo == nil {
		logger.Warn("persistence requested but no repository configured")
		return outcome, nil
	}

	run := &storage.Run{
		ID:             outcome.RunID,
		CreatedAt:      outcome.CreatedAt,
		BankFile:       req.BankName,
		BookFile:       req.BookName,
		Stats:          outcome.Stats,
		Breakdown:      outcome.Breakdown,
		BankArchiveURI: outcome.BankArchiveURI,
		BookArchiveURI: outcome.BookArchiveURI,
	}
	if err := s.repo.SaveRun(run, outcome.Results); err != nil {
		return nil, fmt.Errorf("failed to save run %s: %w", outcome.RunID, err)
	}
	outcome.Persisted = true

	return outcome, nil
}

// archive stores one feed. Failures are logged and never fail the run.
func (s *Service) archive(ctx context.Context, logger *slog.Logger, runID, name string, data []byte) string {
	uri, err := s.archiver.Archive(ctx, runID, name, data)
	if err != nil {
		logger.Warn("failed to archive feed", "name", name, "error", err)
		return ""
	}
	if uri != "" {
		logger.Debug("feed archived", "name", name, "uri", uri)
	}
	return uri
}

// Analyze produces a report for an outcome that has not been persisted.
func (s *Service) Analyze(ctx context.Context, outcome *Outcome, kind insight.ReportKind) (string, error) {
	if s.reporter == nil {
		return "", ErrReportsDisabled
	}
	return s.reporter.Report(ctx, kind, outcome.Results, outcome.Stats)
}

// Report generates a report for a stored run and saves it, replacing any
// earlier report of the same kind.
func (s *Service) Report(ctx context.Context, runID string, kind insight.ReportKind) (*storage.Report, error) {
	if s.reporter == nil {
		return nil, ErrReportsDisabled
	}
	if s.repo == nil {
		return nil, ErrNoRepository
	}

	run, err := s.repo.GetRun(runID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	results, err := s.repo.GetResults(runID, storage.ResultFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load results for run %s: %w", runID, err)
	}

	text, err := s.reporter.Report(ctx, kind, results, run.Stats)
	if err != nil {
		return nil, err
	}

	report := &storage.Report{
		RunID:     runID,
		Kind:      string(kind),
		Model:     s.reporter.Model(),
		Content:   text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.SaveReport(report); err != nil {
		return nil, fmt.Errorf("failed to save %s report for run %s: %w", kind, runID, err)
	}

	s.logger.Info("report generated", "run_id", runID, "kind", kind, "chars", len(text))
	return report, nil
}

// GetReport returns a previously generated report.
func (s *Service) GetReport(runID string, kind insight.ReportKind) (*storage.Report, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}

	report, err := s.repo.GetReport(runID, string(kind))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", ErrReportNotFound, runID, kind)
	}
	return report, err
}
