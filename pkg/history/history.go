// Package history persists finished runs to a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one finished game, as recorded in the history.
type Run struct {
	ID              int64
	Seed            int64
	Turns           int
	GoblinsDefeated int
	Victory         bool
	FinishedAt      time.Time
}

// Store provides SQLite-backed persistence for run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			seed INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			goblins_defeated INTEGER NOT NULL,
			victory INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		)`)
	return err
}

// Record inserts a finished run and returns its id. A zero FinishedAt is
// filled with the current time.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (seed, turns, goblins_defeated, victory, finished_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.Seed, run.Turns, run.GoblinsDefeated, boolToInt(run.Victory), toMillis(run.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, turns, goblins_defeated, victory, finished_at
		FROM runs
		ORDER BY finished_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var victory int
		var finished int64
		if err := rows.Scan(&run.ID, &run.Seed, &run.Turns, &run.GoblinsDefeated, &victory, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Victory = victory != 0
		run.FinishedAt = fromMillis(finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
