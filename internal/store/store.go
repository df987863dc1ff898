package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when a record lookup matches nothing.
var ErrNotFound = errors.New("not found")

// DefaultBlockedSites is the starter list seeded into a fresh database.
var DefaultBlockedSites = []string{
	"youtube.com",
	"twitter.com",
	"facebook.com",
	"instagram.com",
	"reddit.com",
	"tiktok.com",
	"twitch.tv",
}

type Store struct {
	db *sql.DB
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

	s := &Store{db: db}
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
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
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

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		title               TEXT NOT NULL CHECK (length(title) > 0),
		estimated_pomodoros INTEGER NOT NULL DEFAULT 1 CHECK (estimated_pomodoros > 0),
		completed_pomodoros INTEGER NOT NULL DEFAULT 0,
		completed           INTEGER NOT NULL DEFAULT 0,
		order_index         INTEGER NOT NULL DEFAULT 0,
		created_at          INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_order ON tasks(completed, order_index);

	-- task_id has no foreign key so history survives task deletion.
	CREATE TABLE IF NOT EXISTS sessions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id     INTEGER,
		start_time  INTEGER NOT NULL,
		end_time    INTEGER,
		duration    INTEGER NOT NULL DEFAULT 0,
		type        TEXT NOT NULL CHECK (type IN ('work', 'short-break', 'long-break')),
		completed   INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}

	seeds := []Setting{
		{"work_duration", "25"},
		{"short_break", "5"},
		{"long_break", "15"},
		{"intervals_until_long_break", "4"},
		{"enable_sounds", "true"},
		{"enable_music", "false"},
		{"blocked_sites", `["` + strings.Join(DefaultBlockedSites, `","`) + `"]`},
	}
	for _, seed := range seeds {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, seed.Key, seed.Value); err != nil {
			return fmt.Errorf("seed setting %q: %w", seed.Key, err)
		}
	}
	return nil
}

// DefaultDBPath returns ~/.config/focusflow/focusflow.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focusflow", "focusflow.db"), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
