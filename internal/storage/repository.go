// Package storage persists the single pricing configuration document.
//
// Stores only know how to get and set the whole document. Callers that edit
// one field read, modify and write the full document back; there is no
// concurrency control and the last writer wins.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/metrics"
)

// ConfigStore is the durable home of the configuration document.
type ConfigStore interface {
	// Get returns the stored document, or the built-in default when nothing
	// is stored or the stored value does not parse. The error is reserved
	// for failures of the backing store itself.
	Get(ctx context.Context) (*catalog.Document, error)

	// Set overwrites the stored document.
	Set(ctx context.Context, doc *catalog.Document) error

	// UpdatedAt is the time of the last Set, zero when unknown.
	UpdatedAt(ctx context.Context) (time.Time, error)

	Close() error
}

const configKey = "app_config"

type options struct {
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithClock overrides the timestamp source used by Set.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   slog.Default(),
		recorder: metrics.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open returns a store for the named driver: "sqlite3" (cgo), "sqlite"
// (pure Go), "postgres" or "memory".
func Open(driver, dsn string, opts ...Option) (ConfigStore, error) {
	switch driver {
	case DriverSQLiteCgo, DriverSQLite:
		s, err := NewSQLiteStore(driver, dsn, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := NewPostgresStore(dsn, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMemory:
		return NewMemoryStore(opts...), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

const (
	DriverSQLiteCgo = "sqlite3"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverMemory    = "memory"
)

// resolve turns a stored value into a document, substituting the default
// for a missing or unreadable one. Storage is never repaired here.
func resolve(raw []byte, found bool, o options) *catalog.Document {
	if !found {
		o.logger.Info("configuration not stored, using built-in catalog")
		return catalog.Default()
	}

	doc, err := catalog.Decode(raw)
	if err != nil {
		o.logger.Warn("stored configuration is unreadable, using built-in catalog", "error", err)
		o.recorder.CorruptConfigRead()
		return catalog.Default()
	}
	return doc
}
