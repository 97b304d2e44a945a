package kvstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds SQLite store configuration.
type Config struct {
	// DataDir is where storage.db lives. Created if missing.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
	// QuotaBytes caps the total size of keys plus values. 0 disables it.
	QuotaBytes int64 `mapstructure:"quota_bytes" yaml:"quota_bytes"`
	// Ephemeral keeps everything in memory instead of SQLite.
	Ephemeral bool `mapstructure:"ephemeral" yaml:"ephemeral"`
}

// DefaultConfig returns the default configuration for the SQLite store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:    filepath.Join(home, ".moodmate"),
		QuotaBytes: 5 * 1024 * 1024,
	}
}

// SQLiteStore persists documents in a single SQLite table.
type SQLiteStore struct {
	db    *sql.DB
	quota int64
}

// NewSQLite opens (or creates) the database under cfg.DataDir, applies
// the WAL pragmas and runs migrations.
func NewSQLite(cfg Config) (*SQLiteStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("kvstore: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "storage.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("kvstore: pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, quota: cfg.QuotaBytes}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kvstore: migration: %w", err)
	}
	return s, nil
}

// Open returns the store cfg asks for and a function that releases it.
func Open(cfg Config) (Store, func() error, error) {
	if cfg.Ephemeral {
		return NewMemoryStore(cfg.QuotaBytes), func() error { return nil }, nil
	}
	s, err := NewSQLite(cfg)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`)
	return err
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

func (s *SQLiteStore) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kvstore: remove %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) SetMany(entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("kvstore: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.quota > 0 {
		if err := s.checkQuota(tx, entries); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range entries {
		if _, err := tx.Exec(
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			k, v, now,
		); err != nil {
			return fmt.Errorf("kvstore: set %q: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("kvstore: commit: %w", err)
	}
	return nil
}

// checkQuota runs inside the write transaction so the usage it sees is
// the usage the write will be applied to.
func (s *SQLiteStore) checkQuota(tx *sql.Tx, entries map[string]string) error {
	var current int64
	if err := tx.QueryRow(
		`SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0) FROM kv`,
	).Scan(&current); err != nil {
		return fmt.Errorf("kvstore: usage: %w", err)
	}

	old := make(map[string]int64, len(entries))
	for k := range entries {
		var size int64
		err := tx.QueryRow(
			`SELECT length(CAST(key AS BLOB)) + length(CAST(value AS BLOB)) FROM kv WHERE key = ?`, k,
		).Scan(&size)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("kvstore: size of %q: %w", k, err)
		}
		old[k] = size
	}

	if usageAfter(current, old, entries) > s.quota {
		return ErrQuotaExceeded
	}
	return nil
}

func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("kvstore: keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("kvstore: scan key: %w", err)
		}
		if hasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, rows.Err()
}
