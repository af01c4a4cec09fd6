package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// SQLiteConfig locates and tunes a sqlite database.
type SQLiteConfig struct {
	// DSN is a file path or ":memory:".
	DSN string
	// WAL sets journal_mode=WAL.
	WAL bool
	// Sync is the synchronous pragma: OFF, NORMAL, FULL or EXTRA.
	Sync string
}

// OpenDB opens and pings a sqlite connection with the given pragmas.
func OpenDB(cfg SQLiteConfig) (*sql.DB, error) {
	params := url.Values{}
	if cfg.WAL {
		params.Add("_journal_mode", "WAL")
	}
	if cfg.Sync != "" {
		mode := strings.ToUpper(cfg.Sync)
		if !validSyncModes[mode] {
			return nil, fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", cfg.Sync)
		}
		params.Add("_synchronous", mode)
	}

	if dir := dataDir(cfg.DSN); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	dsn := cfg.DSN
	if len(params) > 0 {
		if strings.Contains(dsn, "?") {
			dsn += "&" + params.Encode()
		} else {
			dsn += "?" + params.Encode()
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", dsn, err)
	}
	// One connection keeps ":memory:" databases alive and writes serialized.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", dsn, err)
	}
	return db, nil
}

// dataDir returns the directory holding a file DSN, or "" for in-memory
// databases.
func dataDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return ""
	}
	return filepath.Dir(path)
}

// OpenSQLite returns a Tree keeping one row per leaf document. The schema
// is created on first use; a database from another schema version is
// refused.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig, opts ...Option) (*Tree, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	t := newTree(&sqliteBackend{db: db, q: db}, opts...)
	if _, err := UpgradeDB(ctx, db, t.log, cfg.DSN, TargetSchemaVersion); err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqliteBackend struct {
	// db is nil inside a transaction.
	db *sql.DB
	q  querier
}

func (s *sqliteBackend) get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.q.QueryRowContext(ctx, `SELECT value FROM nodes WHERE path = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *sqliteBackend) put(ctx context.Context, key string, value []byte) error {
	_, err := s.q.ExecContext(ctx, `
INSERT INTO nodes (path, value) VALUES (?, ?)
ON CONFLICT(path) DO UPDATE SET value = excluded.value, updated_at = unixepoch();`, key, value)
	return err
}

func (s *sqliteBackend) del(ctx context.Context, key string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM nodes WHERE path = ?;`, key)
	return err
}

func (s *sqliteBackend) scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	// '0' follows '/' so the range covers exactly the descendants of prefix.
	rows, err := s.q.QueryContext(ctx,
		`SELECT path, value FROM nodes WHERE path = ? OR (path >= ? AND path < ?);`,
		prefix, prefix+Separator, prefix+"0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]byte{}
	for rows.Next() {
		var (
			path  string
			value []byte
		)
		if err := rows.Scan(&path, &value); err != nil {
			return nil, err
		}
		out[path] = value
	}
	return out, rows.Err()
}

func (s *sqliteBackend) atomic(ctx context.Context, fn func(backend) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&sqliteBackend{q: tx}); err != nil {
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return errors.Join(err, rerr)
		}
		return err
	}
	return tx.Commit()
}

func (s *sqliteBackend) close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
