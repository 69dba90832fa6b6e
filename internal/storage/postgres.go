package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

var postgresQueries = queries{
	schema: `
	CREATE TABLE IF NOT EXISTS config (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`,
	seed: `
		INSERT INTO config (key, value_json, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`,
	get: `SELECT value_json FROM config WHERE key = $1`,
	upsert: `
		INSERT INTO config (key, value_json, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value_json = EXCLUDED.value_json,
			updated_at = EXCLUDED.updated_at
	`,
	updated: `SELECT updated_at FROM config WHERE key = $1`,
}

type PostgresStore struct {
	*sqlStore
}

func NewPostgresStore(connStr string, opts ...Option) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	s, err := newSQLStore(db, postgresQueries, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return &PostgresStore{sqlStore: s}, nil
}
