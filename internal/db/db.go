// Package db provides the SQLite connection and schema for the sync history.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// Open opens the database and initializes the schema
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates all required tables
func initSchema(db *sql.DB) error {
	// Sync history - append-only record of sync outcomes per daemon run
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sync_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			event TEXT NOT NULL,
			source_value INTEGER NOT NULL,
			target_value INTEGER NOT NULL,
			detail TEXT,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_run_ts ON sync_history(run_id, timestamp);
		CREATE INDEX IF NOT EXISTS idx_history_event_ts ON sync_history(event, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("failed to create sync_history table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
