package plandb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"

	"github.com/laiyunwu/casestudy12/internal/appconf"
)

//go:embed schema.sql
var ddl string

// InitDB creates a new SQLite database with the dataset and run-history
// tables.
func InitDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		log.Fatal("DB is being created in a file.", config.DBPath)
	}

	// Open database connection
	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}

	// Create tables and indexes within a transaction
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	if _, err = tx.Exec(ddl); err != nil {
		tx.Rollback() // nolint:errcheck
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	return db, nil
}
