// Package store persists gate-count results to a SQLite database: one row
// per analyzed run, one row per bloq complexity. It doubles as a cache,
// handing back the most recent count recorded for a bloq name so repeated
// CLI invocations skip re-counting deep decompositions.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bloq-labs/bloqflow/gatecount"
)

//go:embed schema.sql
var schema string

// Run is one recorded analysis run.
type Run struct {
	ID        string
	Program   string
	CreatedAt time.Time
}

// Entry is one persisted complexity row.
type Entry struct {
	RunID      string
	Bloq       string
	Complexity gatecount.Complexity
}

// Store wraps the SQLite database. Safe for concurrent use; database/sql
// pools connections.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a count store at dsn, enables WAL mode and
// applies the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: set WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records a new run for the named program and returns its id.
func (s *Store) BeginRun(ctx context.Context, program string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, program, created_at) VALUES (?, ?, ?)`,
		id, program, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("store: begin run: %w", err)
	}
	return id, nil
}

// PutCount records one bloq's complexity under a run.
func (s *Store) PutCount(ctx context.Context, runID, bloq string, c gatecount.Complexity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO counts (run_id, bloq, t, clifford, rotations) VALUES (?, ?, ?, ?, ?)`,
		runID, bloq, c.T, c.Clifford, c.Rotations,
	)
	if err != nil {
		return fmt.Errorf("store: put count: %w", err)
	}
	return nil
}

// CachedCount returns the most recently recorded complexity for a bloq
// name, and whether one exists.
func (s *Store) CachedCount(ctx context.Context, bloq string) (gatecount.Complexity, bool, error) {
	var c gatecount.Complexity
	err := s.db.QueryRowContext(ctx,
		`SELECT t, clifford, rotations FROM counts WHERE bloq = ? ORDER BY id DESC LIMIT 1`,
		bloq,
	).Scan(&c.T, &c.Clifford, &c.Rotations)
	if err == sql.ErrNoRows {
		return gatecount.Complexity{}, false, nil
	}
	if err != nil {
		return gatecount.Complexity{}, false, fmt.Errorf("store: cached count: %w", err)
	}
	return c, true, nil
}

// Runs returns all recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, program, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Program, &created); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("store: parse time %q: %w", created, err)
		}
		r.CreatedAt = t
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Counts returns the complexity rows recorded under a run, in insertion
// order.
func (s *Store) Counts(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, bloq, t, clifford, rotations FROM counts WHERE run_id = ? ORDER BY id ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: counts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Bloq, &e.Complexity.T, &e.Complexity.Clifford, &e.Complexity.Rotations); err != nil {
			return nil, fmt.Errorf("store: scan count: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
