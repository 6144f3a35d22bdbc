// Package jobstore persists finished crawl results to SQLite, keyed by job
// id, so a job's result_json survives past the in-memory orchestrator's
// retention sweep.
package jobstore

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/reconspider/internal/crawler"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store is a SQLite-backed table of finished job results.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// applies its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening job store database: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// SaveResult upserts a job's finished result.
func (s *Store) SaveResult(jobID, target string, result *crawler.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO jobs (id, target, finished_at, result_json) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET target=excluded.target, finished_at=excluded.finished_at, result_json=excluded.result_json`,
		jobID, target, time.Now().UTC(), string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("saving job result: %w", err)
	}
	return nil
}

// GetResult returns the stored result for jobID, or (nil, nil) if absent.
func (s *Store) GetResult(jobID string) (*crawler.Result, error) {
	var resultJSON string
	err := s.db.QueryRow(`SELECT result_json FROM jobs WHERE id = ?`, jobID).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying job result: %w", err)
	}

	var result crawler.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

// ListJobIDs returns every stored job id, most recently finished first.
func (s *Store) ListJobIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM jobs ORDER BY finished_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing job ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
