package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/ledger-reconcile/internal/domain/ledger"
)

// Storage provides SQLite database access for reconciliation runs.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, err
	}

	// A single connection keeps writers from tripping over SQLite's file lock
	db.SetMaxOpenConns(1)

	// Run all pending migrations
	if err := runMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// dsn enables foreign keys on every pooled connection
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun persists a run and its results atomically
func (s *Storage) SaveRun(run *Run, results []ledger.Result) error {
	breakdownJSON, err := json.Marshal(run.Breakdown)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO reconciliation_runs
		(id, created_at, bank_file, book_file,
		 bank_count, book_count, matched_count, unmatched_bank_count, unmatched_book_count,
		 total_bank_amount, total_book_amount, diff_amount, breakdown_json,
		 bank_archive_uri, book_archive_uri)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.CreatedAt.UTC(),
		run.BankFile,
		run.BookFile,
		run.Stats.BankCount,
		run.Stats.BookCount,
		run.Stats.MatchedCount,
		run.Stats.UnmatchedBankCount,
		run.Stats.UnmatchedBookCount,
		run.Stats.TotalBankAmount.String(),
		run.Stats.TotalBookAmount.String(),
		run.Stats.DiffAmount.String(),
		string(breakdownJSON),
		run.BankArchiveURI,
		run.BookArchiveURI,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO reconciliation_results
		(run_id, position, result_id, status, score, note, bank_json, book_json, fix_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range results {
		bankJSON, err := nullableJSON(r.Bank)
		if err != nil {
			return err
		}
		bookJSON, err := nullableJSON(r.Book)
		if err != nil {
			return err
		}
		fixJSON, err := nullableJSON(r.Fix)
		if err != nil {
			return err
		}

		if _, err := stmt.Exec(run.ID, i, r.ID, string(r.Status), r.Score, r.Note, bankJSON, bookJSON, fixJSON); err != nil {
			return fmt.Errorf("failed to insert result %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

const runColumns = `
	id, created_at, bank_file, book_file,
	bank_count, book_count, matched_count, unmatched_bank_count, unmatched_book_count,
	total_bank_amount, total_book_amount, diff_amount, breakdown_json,
	bank_archive_uri, book_archive_uri`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var breakdownJSON string
	err := row.Scan(
		&run.ID,
		&run.CreatedAt,
		&run.BankFile,
		&run.BookFile,
		&run.Stats.BankCount,
		&run.Stats.BookCount,
		&run.Stats.MatchedCount,
		&run.Stats.UnmatchedBankCount,
		&run.Stats.UnmatchedBookCount,
		&run.Stats.TotalBankAmount,
		&run.Stats.TotalBookAmount,
		&run.Stats.DiffAmount,
		&breakdownJSON,
		&run.BankArchiveURI,
		&run.BookArchiveURI,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(breakdownJSON), &run.Breakdown); err != nil {
		return nil, fmt.Errorf("corrupt breakdown for run %s: %w", run.ID, err)
	}
	return run, nil
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM reconciliation_runs WHERE id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return run, err
}

// ListRuns returns recent runs, newest first
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT `+runColumns+`
		FROM reconciliation_runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// GetResults returns a run's results in the order the engine produced them
func (s *Storage) GetResults(runID string, filter ResultFilter) ([]ledger.Result, error) {
	query := `
		SELECT result_id, status, score, note, bank_json, book_json, fix_json
		FROM reconciliation_results
		WHERE run_id = ?`
	args := []any{runID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY position`

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, max(filter.Offset, 0))
	case filter.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	results := []ledger.Result{}
	for rows.Next() {
		var r ledger.Result
		var status string
		var bankJSON, bookJSON, fixJSON sql.NullString
		if err := rows.Scan(&r.ID, &status, &r.Score, &r.Note, &bankJSON, &bookJSON, &fixJSON); err != nil {
			return nil, err
		}
		r.Status = ledger.MatchStatus(status)

		if r.Bank, err = decodeJSON[ledger.BankRecord](bankJSON); err != nil {
			return nil, err
		}
		if r.Book, err = decodeJSON[ledger.BookRecord](bookJSON); err != nil {
			return nil, err
		}
		if r.Fix, err = decodeJSON[ledger.SuggestedFix](fixJSON); err != nil {
			return nil, err
		}

		results = append(results, r)
	}

	return results, rows.Err()
}

// GetOverview aggregates every stored run. Amounts are summed in Go so
// decimal totals stay exact.
func (s *Storage) GetOverview() (*Overview, error) {
	rows, err := s.db.Query(`SELECT ` + runColumns + ` FROM reconciliation_runs`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	overview := &Overview{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		overview.addRun(*run)
	}

	return overview, rows.Err()
}

// SaveReport stores a report, replacing any earlier report of the same kind
func (s *Storage) SaveReport(report *Report) error {
	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO run_reports (run_id, kind, model, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, report.RunID, report.Kind, report.Model, report.Content, createdAt.UTC())
	return err
}

// GetReport retrieves a run's report of the given kind
func (s *Storage) GetReport(runID, kind string) (*Report, error) {
	report := &Report{}
	err := s.db.QueryRow(`
		SELECT run_id, kind, model, content, created_at
		FROM run_reports
		WHERE run_id = ? AND kind = ?
	`, runID, kind).Scan(&report.RunID, &report.Kind, &report.Model, &report.Content, &report.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s report for run %s: %w", kind, runID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

func nullableJSON[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeJSON[T any](col sql.NullString) (*T, error) {
	if !col.Valid || col.String == "" {
		return nil, nil
	}

	var v T
	if err := json.Unmarshal([]byte(col.String), &v); err != nil {
		return nil, err
	}
	return &v, nil
}
