// Package history keeps a SQLite ledger of pipeline runs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultPath is the ledger file used when none is configured.
const DefaultPath = "wxscrape_history.db"

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    status TEXT NOT NULL,           -- ok, no_data, fetch_failed, export_failed
    locations INTEGER DEFAULT 0,
    daily_entries INTEGER DEFAULT 0,
    hourly_groups INTEGER DEFAULT 0,
    hourly_entries INTEGER DEFAULT 0,
    monthly_entries INTEGER DEFAULT 0,
    json_path TEXT,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_url ON runs(url);
`

// Store is an open run ledger.
type Store struct {
	db   *sql.DB
	path string
}

// openDB opens a SQLite database at the given path
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; runs never overlap anyway
	sqlDB.SetMaxOpenConns(1)
	return sqlDB, nil
}

// Open opens or creates the ledger at path and ensures its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{db: sqlDB, path: path}
	if err := s.initSchema(); err != nil {
		_ = sqlDB.Close() // Close error less important than schema error
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
