package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// TargetSchemaVersion is the highest schema version this build supports.
	TargetSchemaVersion int64 = 1
	// TreeComponent names the document tree in flow_versions.
	TreeComponent = "tree"
)

// SchemaV1 creates the version table and the leaf document table.
const SchemaV1 = `
CREATE TABLE IF NOT EXISTS flow_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS nodes (
    path TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at REAL DEFAULT (unixepoch())
);
`

// SchemaVersion returns the recorded version of component, or 0 when the
// database has not been initialized.
func SchemaVersion(ctx context.Context, db *sql.DB, component string) (int64, error) {
	var version int64
	err := db.QueryRowContext(ctx, `SELECT version FROM flow_versions WHERE component = ?;`, component).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", component, err)
	}
	return version, nil
}

// InitializeSchema creates the tables and records version.
func InitializeSchema(ctx context.Context, db *sql.DB, version int64) error {
	if _, err := db.ExecContext(ctx, SchemaV1); err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO flow_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`,
		TreeComponent, version)
	if err != nil {
		return fmt.Errorf("failed to record version %d for component %s: %w", version, TreeComponent, err)
	}
	return nil
}

// UpgradeDB brings the tree schema to target and returns the version found
// before the upgrade. Migrating from an older or newer version is refused.
func UpgradeDB(ctx context.Context, db *sql.DB, log *slog.Logger, name string, target int64) (int64, error) {
	current, err := SchemaVersion(ctx, db, TreeComponent)
	if err != nil {
		return 0, err
	}
	switch {
	case current == 0:
		log.Info("initializing schema", "db", name, "component", TreeComponent, "version", target)
		if err := InitializeSchema(ctx, db, target); err != nil {
			return 0, fmt.Errorf("failed to initialize component %s in database '%s': %w", TreeComponent, name, err)
		}
		return 0, nil
	case current == target:
		log.Debug("schema up to date", "db", name, "component", TreeComponent, "version", current)
		return current, nil
	case current < target:
		return current, fmt.Errorf("component %s in database '%s' has schema version %d, which is older than the supported version %d and cannot be migrated automatically", TreeComponent, name, current, target)
	default:
		return current, fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than the supported version %d. Please upgrade flow", TreeComponent, name, current, target)
	}
}
