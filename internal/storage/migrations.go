package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Manifests table
CREATE TABLE IF NOT EXISTS manifests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    source TEXT NOT NULL UNIQUE,
    library TEXT NOT NULL DEFAULT '',
    version TEXT NOT NULL DEFAULT '',
    framework TEXT NOT NULL DEFAULT '',
    content_hash BLOB NOT NULL,
    content BLOB,
    mod_time TIMESTAMP,
    size_bytes INTEGER,
    parse_error TEXT,
    contribution_count INTEGER DEFAULT 0,
    last_loaded_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_manifests_hash ON manifests(content_hash);
CREATE INDEX IF NOT EXISTS idx_manifests_library ON manifests(library);

-- Contributions table
CREATE TABLE IF NOT EXISTS contributions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    manifest_id INTEGER NOT NULL,
    namespace TEXT NOT NULL,
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    path TEXT NOT NULL,
    depth INTEGER NOT NULL DEFAULT 0,
    is_pattern BOOLEAN DEFAULT 0,
    description TEXT,
    doc_url TEXT,
    priority TEXT,
    deprecated BOOLEAN DEFAULT 0,
    experimental BOOLEAN DEFAULT 0,
    abstract BOOLEAN DEFAULT 0,
    virtual BOOLEAN DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (manifest_id) REFERENCES manifests(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contributions_manifest ON contributions(manifest_id);
CREATE INDEX IF NOT EXISTS idx_contributions_kind ON contributions(namespace, kind);
CREATE INDEX IF NOT EXISTS idx_contributions_name ON contributions(name);

-- Full-text search on contributions
CREATE VIRTUAL TABLE IF NOT EXISTS contributions_fts USING fts5(
    name, description, path,
    content='contributions',
    content_rowid='id'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS contributions_ai AFTER INSERT ON contributions BEGIN
    INSERT INTO contributions_fts(rowid, name, description, path)
    VALUES (new.id, new.name, new.description, new.path);
END;

CREATE TRIGGER IF NOT EXISTS contributions_ad AFTER DELETE ON contributions BEGIN
    INSERT INTO contributions_fts(contributions_fts, rowid, name, description, path)
    VALUES ('delete', old.id, old.name, old.description, old.path);
END;

CREATE TRIGGER IF NOT EXISTS contributions_au AFTER UPDATE ON contributions BEGIN
    INSERT INTO contributions_fts(contributions_fts, rowid, name, description, path)
    VALUES ('delete', old.id, old.name, old.description, old.path);
    INSERT INTO contributions_fts(rowid, name, description, path)
    VALUES (new.id, new.name, new.description, new.path);
END;
`

const migrationV1Down = `
-- Drop all tables in reverse order of dependencies
DROP TRIGGER IF EXISTS contributions_au;
DROP TRIGGER IF EXISTS contributions_ad;
DROP TRIGGER IF EXISTS contributions_ai;

DROP TABLE IF EXISTS contributions_fts;
DROP TABLE IF EXISTS contributions;
DROP TABLE IF EXISTS manifests;
DROP TABLE IF EXISTS schema_version;
`

const migrationV11Up = `
-- Load history
CREATE TABLE IF NOT EXISTS load_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    roots TEXT NOT NULL,
    manifests_loaded INTEGER DEFAULT 0,
    manifests_skipped INTEGER DEFAULT 0,
    manifests_failed INTEGER DEFAULT 0,
    manifests_removed INTEGER DEFAULT 0,
    contribution_count INTEGER DEFAULT 0,
    duration_ms INTEGER DEFAULT 0,
    started_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_load_runs_started ON load_runs(started_at);
`

const migrationV11Down = `
DROP TABLE IF EXISTS load_runs;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	currentVersion, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		// Skip if already applied
		if !currentVersion.LessThan(migrationVersion) {
			continue
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// SchemaVersion returns the highest applied migration version, 0.0.0 for a
// fresh database. applied_at has second resolution, so versions are compared
// rather than ordered by time.
func SchemaVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	current := semver.MustParse("0.0.0")

	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return current, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid current schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return errors.New("no migrations to rollback")
	}

	// Find migration
	var migration *Migration
	for i := range AllMigrations {
		if v, err := semver.NewVersion(AllMigrations[i].Version); err == nil && v.Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}

	if migration == nil {
		return fmt.Errorf("migration %s not found", current)
	}

	if _, err := db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}

	// The first migration drops schema_version itself
	if migration.Version == AllMigrations[0].Version {
		return nil
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
	}

	return nil
}
