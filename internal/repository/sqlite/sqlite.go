// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// The board's storage needs are a single filtered/sorted/limited query and
// keyed upserts — exactly what an embedded database covers without any
// separate server to run. modernc.org/sqlite is a pure Go translation of
// the SQLite C code, so there is no CGo and cross-compilation stays simple.
// Use ":memory:" as the path for throwaway databases in tests.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
// It implements both CommentRepository and UserInfoRepository from the
// repository package; the server owns its lifecycle and closes it on
// shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and runs migrations.
//
// WAL mode lets concurrent reads proceed while a write is in flight, which
// matters for a web server where every request hits the DB. Ping forces an
// immediate connection so a bad path surfaces at startup, not on the first
// request.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this safe to
// run on every startup; anything more elaborate (column additions, data
// backfills) would move to a migration tool.
func (db *DB) migrate() error {
	// Comments are insert-only. timestamp is milliseconds since epoch set by
	// the service at creation; the composite index serves the one query the
	// board runs: school equality filter ordered by timestamp.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL DEFAULT '',
			message   TEXT NOT NULL DEFAULT '',
			timestamp INTEGER NOT NULL,
			time      TEXT NOT NULL DEFAULT '',
			school_id INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_school_timestamp
			ON comments(school_id, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	// One row per provider user id. The login flow and the nickname form
	// each upsert their own columns; user_id is the conflict key for both.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_info (
			user_id    TEXT PRIMARY KEY,
			email      TEXT NOT NULL DEFAULT '',
			nickname   TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating user_info table: %w", err)
	}

	return nil
}
