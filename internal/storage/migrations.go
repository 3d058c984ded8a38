package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements creates the persistent schema from scratch. There is
// exactly one schema version today; ApplyMigrations is still named and
// shaped like a migration runner (matching the teacher's
// internal/storage/migrations.go) so a future schema bump has somewhere
// to add a second step.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		path TEXT PRIMARY KEY,
		last_write_time INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS symbols (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		line INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_source_path ON symbols(source_path)`,
	`CREATE TABLE IF NOT EXISTS edges (
		source_path TEXT NOT NULL,
		target_path TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_source_path ON edges(source_path)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_target_path ON edges(target_path)`,
}

// ApplyMigrations brings a freshly opened database up to
// CurrentSchemaVersion, recording the version in meta so IsIncompatible
// can detect a database written by a newer, schema-incompatible build.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	var version string
	err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		_, err := db.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES ('schema_version', ?)`, CurrentSchemaVersion)
		if err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != CurrentSchemaVersion:
		return fmt.Errorf("%w: database schema_version %q, expected %q", errIncompatibleSchema, version, CurrentSchemaVersion)
	}
	return nil
}
