// Package memstore is an in-process repository for analyzed strings.
//
// It enforces the same uniqueness rules as the DynamoDB store and is used by
// the CLI's memory backend and by service tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/query"
	"github.com/jacentio/lexicon/store"
)

// Store holds entries in memory. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	byKey   map[string]analysis.Entry
	byValue map[string]string
	now     func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byKey:   make(map[string]analysis.Entry),
		byValue: make(map[string]string),
		now:     time.Now,
	}
}

// ContainsMode always reports frequency-map containment.
func (s *Store) ContainsMode() query.ContainsMode {
	return query.ContainsFrequency
}

// Create stores e, stamping a zero CreatedAt.
func (s *Store) Create(ctx context.Context, e analysis.Entry) (analysis.Entry, error) {
	if err := ctx.Err(); err != nil {
		return analysis.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byValue[e.Value]; ok {
		return analysis.Entry{}, store.ErrDuplicateValue
	}
	if _, ok := s.byKey[e.Key]; ok {
		return analysis.Entry{}, store.ErrAlreadyExists
	}

	e = e.Stamp(s.now())
	s.byKey[e.Key] = e
	s.byValue[e.Value] = e.Key
	return e, nil
}

// Get returns the entry with the given key.
func (s *Store) Get(ctx context.Context, key string) (analysis.Entry, error) {
	if err := ctx.Err(); err != nil {
		return analysis.Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byKey[key]
	if !ok {
		return analysis.Entry{}, store.ErrNotFound
	}
	return e, nil
}

// GetByValue returns the entry whose value is exactly value.
func (s *Store) GetByValue(ctx context.Context, value string) (analysis.Entry, error) {
	if err := ctx.Err(); err != nil {
		return analysis.Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byValue[value]
	if !ok {
		return analysis.Entry{}, store.ErrNotFound
	}
	return s.byKey[key], nil
}

// Delete removes the entry with the given key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byKey[key]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.byKey, key)
	delete(s.byValue, e.Value)
	return nil
}

// Scan returns the entries matching filters, ordered by key.
func (s *Store) Scan(ctx context.Context, filters query.Filters) ([]analysis.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := make([]analysis.Entry, 0, len(s.byKey))
	for _, e := range s.byKey {
		all = append(all, e)
	}
	s.mu.RUnlock()

	out := query.Filter(all, filters, query.ContainsFrequency)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
