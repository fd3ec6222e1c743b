// Package history persists per-case run outcomes in a SQLite database so
// past suite runs stay inspectable next to the working directories they
// produced.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/artcheck/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// CaseRun is one recorded test-case outcome.
type CaseRun struct {
	RunID         string
	SuiteName     string
	CaseName      string
	Description   string
	Packages      string
	Iterations    int
	Passed        bool
	FailureDetail string
	Duration      time.Duration
	RecordedAt    time.Time
}

// Store manages the SQLite run-history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath and
// initializes the schema. Use ":memory:" for an ephemeral store.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so the later pragmas wait on locks.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordCase persists one case result. Implements suite.Recorder.
func (s *Store) RecordCase(suiteName string, result models.CaseResult) error {
	failureDetail := ""
	if result.Err != nil {
		failureDetail = result.Err.Error()
	}

	_, err := s.db.Exec(`
		INSERT INTO case_runs (run_id, suite_name, case_name, description, packages,
			iterations, passed, failure_detail, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		suiteName,
		result.Case.Name,
		result.Case.Description,
		string(result.Case.Packages),
		len(result.Iterations),
		result.Passed(),
		failureDetail,
		result.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record case run: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent recorded runs for a suite, newest
// first, up to limit. An empty caseName returns runs for every case in the
// suite; a non-empty caseName narrows to that case.
func (s *Store) RecentRuns(suiteName, caseName string, limit int) ([]CaseRun, error) {
	query := `
		SELECT run_id, suite_name, case_name, description, packages,
			iterations, passed, failure_detail, duration_ms, recorded_at
		FROM case_runs
		WHERE suite_name = ?`
	args := []interface{}{suiteName}
	if caseName != "" {
		query += ` AND case_name = ?`
		args = append(args, caseName)
	}
	query += `
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query case runs: %w", err)
	}
	defer rows.Close()

	var runs []CaseRun
	for rows.Next() {
		var (
			run        CaseRun
			durationMS int64
		)
		if err := rows.Scan(&run.RunID, &run.SuiteName, &run.CaseName, &run.Description,
			&run.Packages, &run.Iterations, &run.Passed, &run.FailureDetail,
			&durationMS, &run.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan case run: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
