package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hperssn/buildcalc/internal/catalog"
)

// queries holds the dialect specific statements of a SQL backed store.
type queries struct {
	schema  string
	seed    string
	get     string
	upsert  string
	updated string
}

// sqlStore is the database/sql implementation shared by the SQLite and
// Postgres stores.
type sqlStore struct {
	db   *sql.DB
	q    queries
	opts options
}

func newSQLStore(db *sql.DB, q queries, opts options) (*sqlStore, error) {
	s := &sqlStore{db: db, q: q, opts: opts}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed configuration: %w", err)
	}
	return s, nil
}

func (s *sqlStore) createTables() error {
	_, err := s.db.Exec(s.q.schema)
	return err
}

// seed stores the built-in catalog on first start only.
func (s *sqlStore) seed() error {
	raw, err := catalog.Encode(catalog.Default())
	if err != nil {
		return err
	}
	_, err = s.db.Exec(s.q.seed, configKey, string(raw), s.stamp())
	return err
}

func (s *sqlStore) Get(ctx context.Context) (*catalog.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.q.get, configKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return resolve(nil, false, s.opts), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read configuration: %w", err)
	}
	return resolve([]byte(raw), true, s.opts), nil
}

func (s *sqlStore) Set(ctx context.Context, doc *catalog.Document) error {
	raw, err := catalog.Encode(doc)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.q.upsert, configKey, string(raw), s.stamp()); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	return nil
}

func (s *sqlStore) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts timestamp
	err := s.db.QueryRowContext(ctx, s.q.updated, configKey).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read configuration timestamp: %w", err)
	}
	return ts.Time, nil
}

// stamp formats the write time as RFC 3339 text, which both SQLite TEXT
// columns and Postgres TIMESTAMPTZ columns accept.
func (s *sqlStore) stamp() string {
	return s.opts.now().UTC().Format(time.RFC3339Nano)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// timestamp scans the drivers' differing representations of a time column.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}
