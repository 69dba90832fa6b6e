package storage

import (
	"context"
	"sync"
	"time"

	"github.com/hperssn/buildcalc/internal/catalog"
)

// MemoryStore keeps the encoded document in process memory. It behaves like
// the SQL stores, including the fallback on unreadable content.
type MemoryStore struct {
	mu        sync.RWMutex
	raw       []byte
	found     bool
	updatedAt time.Time
	opts      options
}

// NewMemoryStore returns a store seeded with the built-in catalog.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{opts: buildOptions(opts)}
	if raw, err := catalog.Encode(catalog.Default()); err == nil {
		s.raw, s.found, s.updatedAt = raw, true, s.opts.now()
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context) (*catalog.Document, error) {
	s.mu.RLock()
	raw, found := s.raw, s.found
	s.mu.RUnlock()

	return resolve(raw, found, s.opts), nil
}

func (s *MemoryStore) Set(ctx context.Context, doc *catalog.Document) error {
	raw, err := catalog.Encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw, s.found, s.updatedAt = raw, true, s.opts.now()
	return nil
}

// SetRaw stores bytes as is, bypassing encoding.
func (s *MemoryStore) SetRaw(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw, s.found, s.updatedAt = append([]byte(nil), raw...), true, s.opts.now()
}

// Raw returns the bytes currently stored.
func (s *MemoryStore) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.raw...)
}

func (s *MemoryStore) UpdatedAt(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt, nil
}

func (s *MemoryStore) Close() error { return nil }
