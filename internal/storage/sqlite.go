package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

var sqliteQueries = queries{
	schema: `
	CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
	seed: `
		INSERT INTO config (key, value_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
	get: `SELECT value_json FROM config WHERE key = ?`,
	upsert: `
		INSERT INTO config (key, value_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value_json = excluded.value_json,
			updated_at = excluded.updated_at
	`,
	updated: `SELECT updated_at FROM config WHERE key = ?`,
}

type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens the database file at path with either the cgo driver
// ("sqlite3") or the pure Go one ("sqlite").
func NewSQLiteStore(driver, path string, opts ...Option) (*SQLiteStore, error) {
	var dsn string
	switch driver {
	case DriverSQLiteCgo:
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	case DriverSQLite:
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	default:
		return nil, fmt.Errorf("not a sqlite driver: %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s, err := newSQLStore(db, sqliteQueries, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: s}, nil
}
