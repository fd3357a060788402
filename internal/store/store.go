package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// pragmas tune SQLite for one writer (the CLI or the server) with
// concurrent readers.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA synchronous = NORMAL",
}

// Store owns the SQLite connection and hands out repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq sequence
}

// Open connects to the SQLite database at dsn, creating it if needed, and
// migrates the event tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv, seq: sequence{db: db, name: eventSequence}}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// PruneResult counts the rows removed by Prune.
type PruneResult struct {
	Solves      int64
	LLMRequests int64
}

// Prune deletes solve and LLM request events recorded before cutoff. Both
// tables are pruned in one transaction. Sequence numbers are never reused.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (PruneResult, error) {
	var res PruneResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin prune: %w", err)
	}
	defer tx.Rollback()

	for table, n := range map[string]*int64{
		solveEventsTable:      &res.Solves,
		llmRequestEventsTable: &res.LLMRequests,
	} {
		query, args := builder().Delete(table).
			Where(entsql.LT("timestamp", cutoff.UTC())).
			Query()
		r, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return PruneResult{}, fmt.Errorf("prune %s: %w", table, err)
		}
		if *n, err = r.RowsAffected(); err != nil {
			return PruneResult{}, fmt.Errorf("prune %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return PruneResult{}, fmt.Errorf("commit prune: %w", err)
	}
	return res, nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. MATHSTEP_DB environment variable
// 2. $XDG_DATA_HOME/mathstep/mathstep.db
// 3. ~/.local/share/mathstep/mathstep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MATHSTEP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "mathstep", "mathstep.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
