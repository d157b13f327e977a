// Package insight turns reconciliation results into natural-language
// analysis through a text-generation model.
//
// It only reads engine output; nothing here feeds back into matching.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
)

// ReportKind selects which analysis to produce.
type ReportKind string

const (
	KindDiscrepancies ReportKind = "discrepancies"
	KindExecutive     ReportKind = "executive"
)

// NoAnomaliesText is returned without calling the model when there is
// nothing to analyse.
const NoAnomaliesText = "No significant anomalies found. The data reconciles cleanly."

// DefaultExecutiveTemperature leaves some room for prose in the executive report.
const DefaultExecutiveTemperature float32 = 0.7

var (
	ErrUnknownReportKind = errors.New("unknown report kind")
	ErrEmptyResponse     = errors.New("empty response from model")
)

// ParseReportKind validates a report kind string.
func ParseReportKind(s string) (ReportKind, error) {
	switch k := ReportKind(s); k {
	case KindDiscrepancies, KindExecutive:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReportKind, s)
}

// Analyst produces reports from reconciliation output.
type Analyst struct {
	gen         TextGenerator
	model       string
	temperature float32 // Executive report only
	logger      *slog.Logger
}

// NewAnalyst creates an analyst. model is recorded alongside generated
// reports and may be empty.
func NewAnalyst(gen TextGenerator, model string, logger *slog.Logger) *Analyst {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyst{gen: gen, model: model, temperature: DefaultExecutiveTemperature, logger: logger}
}

// WithTemperature returns a copy of the analyst that writes executive reports
// at the given temperature.
func (a *Analyst) WithTemperature(t float32) *Analyst {
	c := *a
	c.temperature = t
	return &c
}

// Model returns the model name reports are attributed to.
func (a *Analyst) Model() string {
	return a.model
}

// Report produces the report of the given kind.
func (a *Analyst) Report(ctx context.Context, kind ReportKind, results []ledger.Result, stats ledger.Stats) (string, error) {
	switch kind {
	case KindDiscrepancies:
		return a.Discrepancies(ctx, results)
	case KindExecutive:
		return a.Executive(ctx, results, stats)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReportKind, kind)
}

// Discrepancies analyses the unmatched records and high-confidence suspected
// errors.
func (a *Analyst) Discrepancies(ctx context.Context, results []ledger.Result) (string, error) {
	potentials, bank, book := discrepancySamples(results)
	if len(potentials) == 0 && len(bank) == 0 && len(book) == 0 {
		return NoAnomaliesText, nil
	}

	a.logger.Info("requesting discrepancy analysis",
		"potentials", len(potentials),
		"unmatched_bank", len(bank),
		"unmatched_book", len(book))

	text, err := a.gen.Generate(ctx, buildDiscrepancyPrompt(potentials, bank, book), nil)
	if err != nil {
		return "", fmt.Errorf("discrepancy analysis: %w", err)
	}
	return text, nil
}

// Executive produces a Markdown executive summary of the run.
func (a *Analyst) Executive(ctx context.Context, results []ledger.Result, stats ledger.Stats) (string, error) {
	breakdown := summary.Breakdown(results)

	a.logger.Info("requesting executive report",
		"matched", stats.MatchedCount,
		"potentials", breakdown.PotentialCount)

	temperature := a.temperature
	text, err := a.gen.Generate(ctx, buildExecutivePrompt(stats, breakdown), &temperature)
	if err != nil {
		return "", fmt.Errorf("executive report: %w", err)
	}
	return text, nil
}
