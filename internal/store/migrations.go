package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	// Create the schema_version table if it does not exist.
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS drift_reports (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at       TEXT NOT NULL,
			model_name     TEXT NOT NULL,
			test_period    TEXT NOT NULL,
			baseline_mode  TEXT NOT NULL,
			drift_detected BOOLEAN NOT NULL,
			severity       TEXT NOT NULL,
			baseline_mean  REAL NOT NULL,
			current_mean   REAL NOT NULL,
			change_percent REAL,
			p_value        REAL NOT NULL,
			cohens_d       REAL NOT NULL,
			summary        TEXT NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_drift_reports_model ON drift_reports(model_name)`,
		`CREATE INDEX IF NOT EXISTS idx_drift_reports_taken_at ON drift_reports(taken_at)`,
		`CREATE INDEX IF NOT EXISTS idx_drift_reports_severity ON drift_reports(severity)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	// Set schema version.
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
