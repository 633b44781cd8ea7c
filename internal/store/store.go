package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("store: record not found")

// dbtx is the query surface shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every statement; Store runs them on the pool, Tx inside a transaction.
type queries struct {
	db dbtx
}

type Store struct {
	queries
	sqlDB *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps in-memory databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{queries: queries{db: db}, sqlDB: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// Writer is the set of ledger statements that must run inside one transaction.
type Writer interface {
	UpsertGame(ctx context.Context, id, name string) error
	InsertSession(ctx context.Context, sess Session) (int64, error)
	AddOverallTime(ctx context.Context, gameID string, delta int64) error
	SumSessionDurations(ctx context.Context, gameID string) (int64, error)
}

// Tx is a Writer bound to an open transaction.
type Tx struct {
	queries
}

var _ Writer = (*Tx)(nil)

// WithTx runs fn inside a transaction. Any error returned by fn, or a failed
// commit, rolls back every statement fn executed.
func (s *Store) WithTx(ctx context.Context, fn func(w Writer) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&Tx{queries: queries{db: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.sqlDB.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.sqlDB.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS game_dict (
		game_id  TEXT PRIMARY KEY,
		name     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS play_time (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		date_time  TEXT NOT NULL,
		duration   INTEGER NOT NULL,
		game_id    TEXT NOT NULL,
		migrated   TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_play_time_date ON play_time(date_time);
	CREATE INDEX IF NOT EXISTS idx_play_time_game ON play_time(game_id, date_time);

	CREATE TABLE IF NOT EXISTS overall_time (
		game_id   TEXT PRIMARY KEY,
		duration  INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('idle_timeout', '600'),
		('idle_action',  'pause'),
		('report_days',  '7'),
		('daily_goal',   '7200');
	`
	_, err := s.sqlDB.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/playtime/playtime.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "playtime", "playtime.db"), nil
}
