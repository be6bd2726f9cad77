package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Run operations ---

func (s *Store) InsertRun(root string, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO runs (root, started_at) VALUES (?, ?)",
		root, startedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's end time and morphology count.
func (s *Store) FinishRun(runID int64, finishedAt time.Time, morphologyCount int) error {
	_, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, morphology_count = ? WHERE id = ?",
		finishedAt, morphologyCount, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Runs returns all runs, most recent first.
func (s *Store) Runs() ([]*Run, error) {
	rows, err := s.db.Query(
		"SELECT id, root, started_at, finished_at, morphology_count FROM runs ORDER BY id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.Root, &r.StartedAt, &r.FinishedAt, &r.MorphologyCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run, or nil when the catalog is empty.
func (s *Store) LatestRun() (*Run, error) {
	r := &Run{}
	err := s.db.QueryRow(
		"SELECT id, root, started_at, finished_at, morphology_count FROM runs ORDER BY id DESC LIMIT 1",
	).Scan(&r.ID, &r.Root, &r.StartedAt, &r.FinishedAt, &r.MorphologyCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}

// --- Morphology operations ---

func (s *Store) InsertMorphology(m *Morphology) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO morphologies (run_id, path, status, mutations, warnings) VALUES (?, ?, ?, ?, ?)",
		m.RunID, m.Path, m.Status, m.Mutations, m.Warnings,
	)
	if err != nil {
		return 0, fmt.Errorf("insert morphology: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return id, nil
}

// MorphologiesByRun returns a run's morphologies in insertion order.
func (s *Store) MorphologiesByRun(runID int64) ([]*Morphology, error) {
	rows, err := s.db.Query(
		"SELECT id, run_id, path, status, mutations, warnings FROM morphologies WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("morphologies by run: %w", err)
	}
	defer rows.Close()
	var out []*Morphology
	for rows.Next() {
		m := &Morphology{}
		if err := rows.Scan(&m.ID, &m.RunID, &m.Path, &m.Status, &m.Mutations, &m.Warnings); err != nil {
			return nil, fmt.Errorf("scan morphology: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// --- Event operations ---

// InsertEvents writes a morphology's events in one transaction, preserving
// report order.
func (s *Store) InsertEvents(morphologyID int64, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("insert events: begin: %w", err)
	}
	stmt, err := tx.Prepare(
		"INSERT INTO events (morphology_id, kind, arbor, section_id, count, detail) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert events: prepare: %w", err)
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.Exec(morphologyID, e.Kind, e.Arbor, e.SectionID, e.Count, e.Detail); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert events: commit: %w", err)
	}
	return nil
}

// EventsByMorphology returns a morphology's events in report order.
func (s *Store) EventsByMorphology(morphologyID int64) ([]*Event, error) {
	rows, err := s.db.Query(
		"SELECT id, morphology_id, kind, arbor, section_id, count, detail FROM events WHERE morphology_id = ? ORDER BY id",
		morphologyID,
	)
	if err != nil {
		return nil, fmt.Errorf("events by morphology: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// EventsByRun returns every event of a run joined with its file path.
func (s *Store) EventsByRun(runID int64) ([]*EventWithPath, error) {
	rows, err := s.db.Query(
		`SELECT e.id, e.morphology_id, e.kind, e.arbor, e.section_id, e.count, e.detail, m.path
		 FROM events e JOIN morphologies m ON m.id = e.morphology_id
		 WHERE m.run_id = ? ORDER BY e.id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("events by run: %w", err)
	}
	defer rows.Close()
	var out []*EventWithPath
	for rows.Next() {
		e := &EventWithPath{}
		if err := rows.Scan(&e.ID, &e.MorphologyID, &e.Kind, &e.Arbor, &e.SectionID, &e.Count, &e.Detail, &e.Path); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.MorphologyID, &e.Kind, &e.Arbor, &e.SectionID, &e.Count, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
