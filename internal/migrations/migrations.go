// Package migrations owns the operation history database schema.
package migrations

import (
	"database/sql"
	"fmt"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: 1,
		Name:    "Add profile and entity indices to operations",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_operations_profile ON operations(profile_name);
			CREATE INDEX IF NOT EXISTS idx_operations_entity ON operations(entity);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_operations_profile;
			DROP INDEX IF EXISTS idx_operations_entity;
		`,
	},
	{
		Version: 2,
		Name:    "Add request_id column index for correlation lookups",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_operations_request_id ON operations(request_id);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_operations_request_id;
		`,
	},
}

// InitSchema creates all tables required by the history module.
// This must be called before running migrations to ensure all tables exist
func InitSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		profile_name TEXT,
		entity TEXT NOT NULL,
		operation TEXT NOT NULL,
		record_id INTEGER,
		outcome TEXT NOT NULL,
		detail TEXT,
		request_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_operations_timestamp ON operations(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_operations_outcome ON operations(outcome);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Run executes all pending migrations on the database
func Run(db *sql.DB) error {
	if err := InitSchema(db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for _, migration := range AllMigrations {
		if migration.Version <= currentVersion {
			continue
		}

		_, err := db.Exec(migration.Up)
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		_, err = db.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version,
			migration.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// GetCurrentVersion returns the current database schema version
func GetCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM schema_migrations
	`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return version, nil
}
