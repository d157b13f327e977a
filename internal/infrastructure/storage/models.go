package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
	"github.com/eshaffer321/ledger-reconcile/internal/domain/summary"
)

// Run is a persisted reconciliation run
type Run struct {
	ID             string                 `json:"id"`
	CreatedAt      time.Time              `json:"created_at"`
	BankFile       string                 `json:"bank_file"`
	BookFile       string                 `json:"book_file"`
	Stats          ledger.Stats           `json:"stats"`
	Breakdown      summary.ErrorBreakdown `json:"breakdown"`
	BankArchiveURI string                 `json:"bank_archive_uri,omitempty"`
	BookArchiveURI string                 `json:"book_archive_uri,omitempty"`
}

// Report is a generated narrative report for a run
type Report struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Model     string    `json:"model,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Overview aggregates all stored runs
type Overview struct {
	RunCount           int             `json:"run_count"`
	BankRecords        int             `json:"bank_records"`
	BookRecords        int             `json:"book_records"`
	MatchedCount       int             `json:"matched_count"`
	PotentialCount     int             `json:"potential_count"`
	UnmatchedBankCount int             `json:"unmatched_bank_count"`
	UnmatchedBookCount int             `json:"unmatched_book_count"`
	MatchRate          float64         `json:"match_rate"` // Matched bank records, percent
	TotalDiffAmount    decimal.Decimal `json:"total_diff_amount"`
	LastRunAt          *time.Time      `json:"last_run_at,omitempty"`
}

// addRun folds one run into the overview
func (o *Overview) addRun(r Run) {
	o.RunCount++
	o.BankRecords += r.Stats.BankCount
	o.BookRecords += r.Stats.BookCount
	o.MatchedCount += r.Stats.MatchedCount
	o.PotentialCount += r.Breakdown.PotentialCount
	o.UnmatchedBankCount += r.Stats.UnmatchedBankCount
	o.UnmatchedBookCount += r.Stats.UnmatchedBookCount
	o.TotalDiffAmount = o.TotalDiffAmount.Add(r.Stats.DiffAmount)

	if o.LastRunAt == nil || r.CreatedAt.After(*o.LastRunAt) {
		at := r.CreatedAt
		o.LastRunAt = &at
	}
	if o.BankRecords > 0 {
		o.MatchRate = float64(o.MatchedCount) / float64(o.BankRecords) * 100
	}
}
