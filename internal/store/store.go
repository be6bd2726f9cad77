// Package store is the SQLite catalog for batch repair runs: which files
// were repaired when, and every event each repair pass reported. The CLI
// records into it during `neurite repair` and reads from it for `neurite
// runs` and `neurite events`.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the repair catalog.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the catalog tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id               INTEGER PRIMARY KEY,
  root             TEXT NOT NULL,
  started_at       TIMESTAMP NOT NULL,
  finished_at      TIMESTAMP,
  morphology_count INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS morphologies (
  id        INTEGER PRIMARY KEY,
  run_id    INTEGER NOT NULL REFERENCES runs(id),
  path      TEXT NOT NULL,
  status    TEXT NOT NULL,
  mutations INTEGER DEFAULT 0,
  warnings  INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
  id            INTEGER PRIMARY KEY,
  morphology_id INTEGER NOT NULL REFERENCES morphologies(id),
  kind          TEXT NOT NULL,
  arbor         TEXT,
  section_id    INTEGER,
  count         INTEGER,
  detail        TEXT
);

CREATE INDEX IF NOT EXISTS idx_morphologies_run ON morphologies(run_id);
CREATE INDEX IF NOT EXISTS idx_events_morphology ON events(morphology_id);
CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
`
