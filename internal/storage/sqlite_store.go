package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-feed-notifier/internal/domain"
	_ "modernc.org/sqlite"
)

// sqliteStore implements a Store backed by SQLite.
type sqliteStore struct {
	db              *sql.DB
	cleanupMu       sync.Mutex
	lastCleanup     time.Time
	reportTTL       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openSQLite opens the database and creates the runs table.
// Use ":memory:" for an in-memory database.
func openSQLite(path string, opts Options) (*sqliteStore, error) {
	if path != ":memory:" {
		if err := ensureDir(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	store := &sqliteStore{
		db:              db,
		reportTTL:       opts.ReportTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	store.lastCleanup = store.now()
	return store, nil
}

func (s *sqliteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		report TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_expires_at ON runs(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun inserts the report with its expiry.
func (s *sqliteStore) SaveRun(report domain.RunReport) error {
	if s == nil || s.db == nil {
		return nil
	}

	now := s.now()
	if err := s.maybeCleanupExpired(now); err != nil {
		return err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO runs (started_at, expires_at, report) VALUES (?, ?, ?)",
		report.StartedAt.UnixNano(), now.Add(s.reportTTL).Unix(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert run report: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit unexpired reports, newest first.
func (s *sqliteStore) RecentRuns(limit int) ([]domain.RunReport, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	rows, err := s.db.Query(
		"SELECT report FROM runs WHERE expires_at > ? ORDER BY started_at DESC, id DESC LIMIT ?",
		s.now().Unix(), normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query run reports: %w", err)
	}
	defer rows.Close()

	var out []domain.RunReport
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan run report: %w", err)
		}
		var report domain.RunReport
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("decode run report: %w", err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

func (s *sqliteStore) maybeCleanupExpired(now time.Time) error {
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()

	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return nil
	}
	if _, err := s.db.Exec("DELETE FROM runs WHERE expires_at <= ?", now.Unix()); err != nil {
		return fmt.Errorf("delete expired run reports: %w", err)
	}
	s.lastCleanup = now
	return nil
}
