package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the sample database at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS queue_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			running INTEGER NOT NULL,
			pending INTEGER NOT NULL,
			timestamp DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_queue_samples_ts
			ON queue_samples(timestamp);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Save(sample Sample) error {
	_, err := s.db.Exec(
		`INSERT INTO queue_samples (running, pending, timestamp) VALUES (?, ?, ?)`,
		sample.Running, sample.Pending, sample.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Latest(n int) ([]Sample, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT running, pending, timestamp FROM (
			SELECT id, running, pending, timestamp FROM queue_samples
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		) ORDER BY timestamp ASC, id ASC`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

func (s *sqliteStorage) Range(from, to time.Time) ([]Sample, error) {
	rows, err := s.db.Query(
		`SELECT running, pending, timestamp FROM queue_samples
		 WHERE timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp ASC, id ASC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

func scanSamples(rows *sql.Rows) ([]Sample, error) {
	var samples []Sample
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(&sample.Running, &sample.Pending, &sample.Timestamp); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return samples, nil
}

func (s *sqliteStorage) Cleanup(olderThan time.Time) error {
	_, err := s.db.Exec(`DELETE FROM queue_samples WHERE timestamp < ?`, olderThan.UTC())
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
