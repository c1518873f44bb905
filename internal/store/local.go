// Package store persists ideas, their evaluations, and a log of gateway
// calls in a single SQLite database.
//
// Every operation runs in its own transaction; a failed operation is rolled
// back and leaves nothing behind.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"execmind/internal/logging"

	_ "modernc.org/sqlite"
)

// ErrPersistence wraps every failed store operation.
var ErrPersistence = errors.New("persistence failure")

// ErrNotFound is returned when a lookup by ID finds nothing.
var ErrNotFound = errors.New("not found")

// LocalStore is the SQLite-backed idea store.
type LocalStore struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewLocalStore opens (creating if needed) the SQLite database at path.
func NewLocalStore(path string) (*LocalStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer; the workflow is sequential.
	db.SetMaxOpenConns(1)

	s := &LocalStore{db: db, dbPath: path, now: time.Now}
	if err := s.initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Store opened at %s", path)
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS ideas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_input TEXT NOT NULL,
	problem_statement TEXT NOT NULL DEFAULT '',
	proposed_solution TEXT NOT NULL DEFAULT '',
	target_users TEXT NOT NULL DEFAULT '',
	assumptions TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT 'text' CHECK (source IN ('text', 'voice')),
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	idea_id INTEGER NOT NULL REFERENCES ideas(id),
	feasibility INTEGER NOT NULL,
	market_value INTEGER NOT NULL,
	complexity INTEGER NOT NULL,
	risk INTEGER NOT NULL,
	innovation INTEGER NOT NULL,
	final_score REAL NOT NULL,
	verdict TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evaluations_idea ON evaluations(idea_id);

CREATE TABLE IF NOT EXISTS gateway_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	step TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT '',
	system_prompt TEXT NOT NULL,
	user_prompt TEXT NOT NULL,
	response TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gateway_traces_step ON gateway_traces(step);
`

// initialize creates the required tables.
func (s *LocalStore) initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *LocalStore) Path() string {
	return s.dbPath
}

// inTx runs fn inside one transaction. Any error rolls back and is wrapped
// with ErrPersistence.
func (s *LocalStore) inTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: begin: %w", ErrPersistence, op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		logging.StoreError("%s rolled back: %v", op, err)
		return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
	}
	if err := tx.Commit(); err != nil {
		logging.StoreError("%s commit failed: %v", op, err)
		return fmt.Errorf("%w: %s: commit: %w", ErrPersistence, op, err)
	}
	return nil
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
