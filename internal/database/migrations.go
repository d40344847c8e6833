package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents one schema migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history. The cache holds one table of
// fetched visit rows plus fetch bookkeeping; timestamp and coordinates are
// nullable so rows that failed parsing stay available to categorical views.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_visits",
		SQL: `
			CREATE TABLE IF NOT EXISTS visits (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp INTEGER,
				raw_timestamp TEXT NOT NULL DEFAULT '',
				ip TEXT NOT NULL DEFAULT '',
				country TEXT NOT NULL DEFAULT '',
				region TEXT NOT NULL DEFAULT '',
				isp TEXT NOT NULL DEFAULT '',
				device TEXT NOT NULL DEFAULT '',
				browser TEXT NOT NULL DEFAULT '',
				latitude REAL,
				longitude REAL
			);
			CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
			CREATE INDEX IF NOT EXISTS idx_visits_country ON visits(country);
		`,
	},
	{
		Version: 2,
		Name:    "create_fetch_log",
		SQL: `
			CREATE TABLE IF NOT EXISTS fetch_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				fetched_at INTEGER NOT NULL,
				row_count INTEGER NOT NULL
			);
		`,
	},
}

// RunMigrations applies all pending migrations on the given handle
func RunMigrations(handle *sql.DB) error {
	if err := initMigrationsTable(handle); err != nil {
		return err
	}

	applied, err := appliedVersions(handle)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(handle, migration); err != nil {
			return err
		}
	}
	return nil
}

func initMigrationsTable(handle *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := handle.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedVersions(handle *sql.DB) (map[int]bool, error) {
	rows, err := handle.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(handle *sql.DB, migration Migration) error {
	return TransactionOn(handle, func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		log.Printf("Applied migration %d: %s", migration.Version, migration.Name)
		return nil
	})
}
