// Package database opens the SQLite store that holds install history.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// DB is the install history store.
type DB struct {
	*sql.DB
}

// New opens the history database at path, creating its directory on first
// use. ":memory:" gives a throwaway store for tests.
func New(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps writers from tripping over each other and keeps an
	// in-memory database alive across queries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}

	return &DB{db}, nil
}

// Migrate applies any migrations not yet recorded in the migrations table.
func (db *DB) Migrate() error {
	return runMigrations(db.DB)
}
