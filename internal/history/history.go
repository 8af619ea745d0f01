// Package history keeps a ledger of builds in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one finished build.
type Entry struct {
	ID           int64
	BuildID      string
	Mode         string
	Outcome      string
	StartedAt    time.Time
	Duration     time.Duration
	Indexed      int
	Work         int
	Published    int
	Failed       int
	Empty        int
	BackedUp     int
	StaleRemoved int
	Newest       string
	Error        string
}

// Store is the write side used by the build service.
type Store interface {
	Append(ctx context.Context, e Entry) error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the ledger at dbPath. Use ":memory:"
// for an in-memory database.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL,
		outcome TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		indexed INTEGER NOT NULL DEFAULT 0,
		work INTEGER NOT NULL DEFAULT 0,
		published INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		empty INTEGER NOT NULL DEFAULT 0,
		backed_up INTEGER NOT NULL DEFAULT 0,
		stale_removed INTEGER NOT NULL DEFAULT 0,
		newest TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a finished build.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO builds (build_id, mode, outcome, started_at, duration_ms,
			indexed, work, published, failed, empty, backed_up, stale_removed, newest, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BuildID, e.Mode, e.Outcome, e.StartedAt.UnixMilli(), e.Duration.Milliseconds(),
		e.Indexed, e.Work, e.Published, e.Failed, e.Empty, e.BackedUp, e.StaleRemoved, e.Newest, e.Error,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, build_id, mode, outcome, started_at, duration_ms,
			indexed, work, published, failed, empty, backed_up, stale_removed, newest, error
		FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var startedMS, durationMS int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Mode, &e.Outcome, &startedMS, &durationMS,
			&e.Indexed, &e.Work, &e.Published, &e.Failed, &e.Empty, &e.BackedUp, &e.StaleRemoved,
			&e.Newest, &e.Error); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
