package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
	"github.com/eshaffer321/ledger-reconcile/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// StatsSummary carries run statistics with amounts fixed to two decimals.
type StatsSummary struct {
	BankCount          int    `json:"total_bank"`
	BookCount          int    `json:"total_book"`
	MatchedCount       int    `json:"matched_count"`
	PotentialCount     int    `json:"potential_count"`
	UnmatchedBankCount int    `json:"unmatched_bank_count"`
	UnmatchedBookCount int    `json:"unmatched_book_count"`
	TotalBankAmount    string `json:"total_bank_amount"`
	TotalBookAmount    string `json:"total_book_amount"`
	DiffAmount         string `json:"diff_amount"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID             string                 `json:"id"`
	CreatedAt      string                 `json:"created_at"`
	BankFile       string                 `json:"bank_file,omitempty"`
	BookFile       string                 `json:"book_file,omitempty"`
	Stats          StatsSummary           `json:"stats"`
	Breakdown      summary.ErrorBreakdown `json:"breakdown"`
	BankArchiveURI string                 `json:"bank_archive_uri,omitempty"`
	BookArchiveURI string                 `json:"book_archive_uri,omitempty"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// ReconcileResponse is returned after a reconciliation upload.
type ReconcileResponse struct {
	Run       RunResponse     `json:"run"`
	Persisted bool            `json:"persisted"`
	Results   []ledger.Result `json:"results"`
}

// ResultListResponse is returned when listing a run's results.
type ResultListResponse struct {
	RunID   string          `json:"run_id"`
	Status  string          `json:"status,omitempty"`
	Results []ledger.Result `json:"results"`
	Count   int             `json:"count"`
}

// ReportResponse represents a generated report.
type ReportResponse struct {
	RunID     string `json:"run_id"`
	Kind      string `json:"kind"`
	Model     string `json:"model,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// StatsResponse aggregates all stored runs.
type StatsResponse struct {
	RunCount           int     `json:"run_count"`
	BankRecords        int     `json:"bank_records"`
	BookRecords        int     `json:"book_records"`
	MatchedCount       int     `json:"matched_count"`
	PotentialCount     int     `json:"potential_count"`
	UnmatchedBankCount int     `json:"unmatched_bank_count"`
	UnmatchedBookCount int     `json:"unmatched_book_count"`
	MatchRate          float64 `json:"match_rate"`
	TotalDiffAmount    string  `json:"total_diff_amount"`
	LastRunAt          string  `json:"last_run_at,omitempty"`
}

// NewStatsSummary converts engine statistics.
func NewStatsSummary(stats ledger.Stats, potentials int) StatsSummary {
	return StatsSummary{
		BankCount:          stats.BankCount,
		BookCount:          stats.BookCount,
		MatchedCount:       stats.MatchedCount,
		PotentialCount:     potentials,
		UnmatchedBankCount: stats.UnmatchedBankCount,
		UnmatchedBookCount: stats.UnmatchedBookCount,
		TotalBankAmount:    money(stats.TotalBankAmount),
		TotalBookAmount:    money(stats.TotalBookAmount),
		DiffAmount:         money(stats.DiffAmount),
	}
}

// NewRunResponse converts a stored run.
func NewRunResponse(run storage.Run) RunResponse {
	return RunResponse{
		ID:             run.ID,
		CreatedAt:      run.CreatedAt.UTC().Format(time.RFC3339),
		BankFile:       run.BankFile,
		BookFile:       run.BookFile,
		Stats:          NewStatsSummary(run.Stats, run.Breakdown.PotentialCount),
		Breakdown:      run.Breakdown,
		BankArchiveURI: run.BankArchiveURI,
		BookArchiveURI: run.BookArchiveURI,
	}
}

// NewReconcileResponse converts a fresh reconciliation outcome.
func NewReconcileResponse(o *reconcile.Outcome, bankFile, bookFile string) ReconcileResponse {
	return ReconcileResponse{
		Run: RunResponse{
			ID:             o.RunID,
			CreatedAt:      o.CreatedAt.UTC().Format(time.RFC3339),
			BankFile:       bankFile,
			BookFile:       bookFile,
			Stats:          NewStatsSummary(o.Stats, o.Breakdown.PotentialCount),
			Breakdown:      o.Breakdown,
			BankArchiveURI: o.BankArchiveURI,
			BookArchiveURI: o.BookArchiveURI,
		},
		Persisted: o.Persisted,
		Results:   o.Results,
	}
}

// NewReportResponse converts a stored report.
func NewReportResponse(r *storage.Report) ReportResponse {
	return ReportResponse{
		RunID:     r.RunID,
		Kind:      r.Kind,
		Model:     r.Model,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewStatsResponse converts a storage overview.
func NewStatsResponse(o *storage.Overview) StatsResponse {
	resp := StatsResponse{
		RunCount:           o.RunCount,
		BankRecords:        o.BankRecords,
		BookRecords:        o.BookRecords,
		MatchedCount:       o.MatchedCount,
		PotentialCount:     o.PotentialCount,
		UnmatchedBankCount: o.UnmatchedBankCount,
		UnmatchedBookCount: o.UnmatchedBookCount,
		MatchRate:          o.MatchRate,
		TotalDiffAmount:    money(o.TotalDiffAmount),
	}
	if o.LastRunAt != nil {
		resp.LastRunAt = o.LastRunAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
