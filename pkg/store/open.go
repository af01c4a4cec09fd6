package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Backend names a storage implementation.
type Backend string

const (
	BackendDiskv  Backend = "diskv"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// SQLiteFile is the database file name used below the configured path.
const SQLiteFile = "flow.db"

// Config selects and tunes a backend.
type Config struct {
	Backend Backend
	Path    string
	WAL     bool
	Sync    string
	Retry   RetryPolicy
}

// Open returns the configured adapter wrapped in the retry policy.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (Adapter, error) {
	if log == nil {
		log = slog.Default()
	}
	var (
		t   *Tree
		err error
	)
	switch cfg.Backend {
	case BackendDiskv, "":
		t, err = OpenDiskv(cfg.Path, WithLogger(log))
	case BackendSQLite:
		t, err = OpenSQLite(ctx, SQLiteConfig{
			DSN:  filepath.Join(cfg.Path, SQLiteFile),
			WAL:  cfg.WAL,
			Sync: cfg.Sync,
		}, WithLogger(log))
	case BackendMemory:
		t = NewMemory(WithLogger(log))
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("store opened", "backend", cfg.Backend, "path", cfg.Path)
	return WithRetry(t, cfg.Retry, log), nil
}
