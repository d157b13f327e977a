package storage

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	mu      sync.Mutex
	runs    map[string]*Run
	results map[string][]ledger.Result
	reports map[string]*Report // Keyed by run_id + "/" + kind

	// Hooks for test assertions
	SaveRunCalled    bool
	LastSavedRun     *Run
	SaveReportCalled bool
	LastSavedReport  *Report

	// Error injection for testing error paths
	SaveRunErr    error
	GetRunErr     error
	GetResultsErr error
	SaveReportErr error
	OverviewErr   error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:    make(map[string]*Run),
		results: make(map[string][]ledger.Result),
		reports: make(map[string]*Report),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveRun stores a run and a copy of its results
func (m *MockRepository) SaveRun(run *Run, results []ledger.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveRunCalled = true
	m.LastSavedRun = run
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}

	// Copy to avoid test mutations
	copied := *run
	m.runs[run.ID] = &copied
	m.results[run.ID] = slices.Clone(results)
	return nil
}

// GetRun retrieves a run from the in-memory map
func (m *MockRepository) GetRun(runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns runs newest first
func (m *MockRepository) ListRuns(limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetResults filters the stored results
func (m *MockRepository) GetResults(runID string, filter ResultFilter) ([]ledger.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetResultsErr != nil {
		return nil, m.GetResultsErr
	}

	out := []ledger.Result{}
	for _, r := range m.results[runID] {
		if filter.Status == "" || r.Status == filter.Status {
			out = append(out, r)
		}
	}

	if filter.Offset > 0 {
		out = out[min(filter.Offset, len(out)):]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// GetOverview aggregates the stored runs
func (m *MockRepository) GetOverview() (*Overview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.OverviewErr != nil {
		return nil, m.OverviewErr
	}

	overview := &Overview{}
	for _, run := range m.runs {
		overview.addRun(*run)
	}
	return overview, nil
}

// SaveReport stores a report, replacing one of the same kind
func (m *MockRepository) SaveReport(report *Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveReportCalled = true
	m.LastSavedReport = report
	if m.SaveReportErr != nil {
		return m.SaveReportErr
	}
	copied := *report
	m.reports[report.RunID+"/"+report.Kind] = &copied
	return nil
}

// GetReport retrieves a report from the in-memory map
func (m *MockRepository) GetReport(runID, kind string) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report, ok := m.reports[runID+"/"+kind]
	if !ok {
		return nil, fmt.Errorf("%s report for run %s: %w", kind, runID, ErrNotFound)
	}
	copied := *report
	return &copied, nil
}
