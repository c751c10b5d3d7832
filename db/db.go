// Package db is the sqlite audit ledger of moderation decisions.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const dbDriver = "sqlite3"

// Ledger writes moderation events to sqlite. It is safe for concurrent use.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and its tables.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create database dir")
		}
	}

	conn, err := sql.Open(dbDriver, path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// sqlite serializes writers anyway
	conn.SetMaxOpenConns(1)

	l := New(conn)
	if err := l.createTables(); err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

// New wraps an existing connection without touching the schema.
func New(conn *sql.DB) *Ledger {
	return &Ledger{db: conn}
}

// Close closes the connection pool.
func (l *Ledger) Close() error {
	return l.db.Close()
}
