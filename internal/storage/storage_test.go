package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/metrics"
)

type corruptCounter struct {
	metrics.Nop
	n int
}

func (c *corruptCounter) CorruptConfigRead() { c.n++ }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func openSQLite(t *testing.T, opts ...Option) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buildcalc.db")
	s, err := NewSQLiteStore(DriverSQLite, path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSeedsDefaultOnFirstOpen(t *testing.T) {
	s := openSQLite(t)

	doc, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Default(), doc)
}

func TestSQLiteSetOverwritesAndStamps(t *testing.T) {
	ctx := context.Background()
	when := time.Date(2026, 10, 15, 12, 30, 0, 0, time.UTC)
	s := openSQLite(t, WithClock(fixedClock(when)))

	doc := catalog.Default()
	doc.RoofCoefficient = 1.35
	doc.Walls = doc.Walls[:1]
	require.NoError(t, s.Set(ctx, doc))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.35, got.RoofCoefficient)
	assert.Len(t, got.Walls, 1)

	ts, err := s.UpdatedAt(ctx)
	require.NoError(t, err)
	assert.True(t, when.Equal(ts), "updated_at = %v", ts)
}

func TestSQLiteReopenKeepsStoredDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "buildcalc.db")

	s, err := NewSQLiteStore(DriverSQLite, path)
	require.NoError(t, err)
	doc := catalog.Default()
	doc.AreaLimits = catalog.AreaLimits{Min: 50, Max: 300}
	require.NoError(t, s.Set(ctx, doc))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.AreaLimits{Min: 50, Max: 300}, got.AreaLimits, "seeding must not overwrite")
}

func TestSQLiteCorruptRowFallsBackWithoutRepair(t *testing.T) {
	ctx := context.Background()
	rec := &corruptCounter{}
	s := openSQLite(t, WithRecorder(rec))

	_, err := s.db.Exec(`UPDATE config SET value_json = ? WHERE key = ?`, "{not json", configKey)
	require.NoError(t, err)

	doc, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Default(), doc)

	var raw string
	require.NoError(t, s.db.QueryRow(`SELECT value_json FROM config WHERE key = ?`, configKey).Scan(&raw))
	assert.Equal(t, "{not json", raw, "fallback must not be persisted")
	assert.Equal(t, 1, rec.n)
}

func TestSQLiteMissingRowFallsBack(t *testing.T) {
	s := openSQLite(t)
	_, err := s.db.Exec(`DELETE FROM config`)
	require.NoError(t, err)

	doc, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Default(), doc)

	ts, err := s.UpdatedAt(context.Background())
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc, err := s.Get(ctx)
	require.NoError(t, err)
	doc.Extras = nil

	again, err := s.Get(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, again.Extras, "callers get their own copy")

	require.NoError(t, s.Set(ctx, doc))
	again, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Extras)

	s.SetRaw([]byte("[]"))
	again, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.Default(), again)
	assert.Equal(t, "[]", string(s.Raw()))
}

func TestOpen(t *testing.T) {
	s, err := Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(DriverSQLite, filepath.Join(t.TempDir(), "x.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("mongodb", "")
	assert.Error(t, err)
}

func TestTimestampScan(t *testing.T) {
	var ts timestamp
	require.NoError(t, ts.Scan("2026-10-15T12:30:00Z"))
	assert.Equal(t, 2026, ts.Year())

	require.NoError(t, ts.Scan([]byte("2026-10-15 12:30:00")))
	assert.Equal(t, 12, ts.Hour())

	now := time.Now()
	require.NoError(t, ts.Scan(now))
	assert.True(t, now.Equal(ts.Time))

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}
