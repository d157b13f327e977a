package storage

import (
	"errors"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

// ErrNotFound is returned when a run or report does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	RunRepository
	ReportRepository
	Close() error
}

// RunRepository handles reconciliation runs and their results
type RunRepository interface {
	// SaveRun persists a run together with its results in one transaction
	SaveRun(run *Run, results []ledger.Result) error

	// GetRun retrieves a run by ID (without results)
	GetRun(runID string) (*Run, error)

	// ListRuns returns the most recent runs first
	ListRuns(limit int) ([]Run, error)

	// GetResults returns a run's results in engine order
	GetResults(runID string, filter ResultFilter) ([]ledger.Result, error)

	// GetOverview aggregates every stored run
	GetOverview() (*Overview, error)
}

// ReportRepository handles generated narrative reports
type ReportRepository interface {
	// SaveReport stores a report, replacing an earlier one of the same kind
	SaveReport(report *Report) error

	// GetReport retrieves the report of the given kind for a run
	GetReport(runID, kind string) (*Report, error)
}

// ResultFilter narrows GetResults
type ResultFilter struct {
	Status ledger.MatchStatus // Filter by status (empty = all)
	Limit  int                // Max results (0 = no limit)
	Offset int                // Pagination offset
}
