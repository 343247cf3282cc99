// Package service composes analysis, persistence and filtering into the
// operations exposed by the API and the CLI.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jacentio/lexicon/analysis"
	"github.com/jacentio/lexicon/nlquery"
	"github.com/jacentio/lexicon/query"
	"github.com/jacentio/lexicon/store"
)

var (
	// ErrMissingQuery is returned when a natural-language query is empty.
	ErrMissingQuery = errors.New("lexicon: query parameter is required")

	// ErrConflictingFilters is returned when a natural-language query yields
	// min_length greater than max_length.
	ErrConflictingFilters = errors.New("lexicon: query parsed but resulted in conflicting filters")
)

// Repository is the persistence contract. *store.Store, *sqlstore.Store and
// *memstore.Store satisfy it.
type Repository interface {
	Create(ctx context.Context, e analysis.Entry) (analysis.Entry, error)
	Get(ctx context.Context, key string) (analysis.Entry, error)
	GetByValue(ctx context.Context, value string) (analysis.Entry, error)
	Delete(ctx context.Context, key string) error
	Scan(ctx context.Context, filters query.Filters) ([]analysis.Entry, error)
	ContainsMode() query.ContainsMode
}

var _ Repository = (*store.Store)(nil)

// ListResult is the outcome of a structured filter query.
type ListResult struct {
	Entries []analysis.Entry
	Count   int
	Filters query.Filters
}

// InterpretResult is the outcome of a natural-language query.
type InterpretResult struct {
	Entries  []analysis.Entry
	Count    int
	Original string
	Filters  query.Filters
}

// Service is safe for concurrent use when its Repository is.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// New creates a Service. A nil logger uses slog.Default().
func New(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create analyzes value and persists it.
func (s *Service) Create(ctx context.Context, value string) (analysis.Entry, error) {
	e, err := analysis.Analyze(value)
	if err != nil {
		return analysis.Entry{}, err
	}
	created, err := s.repo.Create(ctx, e)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			s.logger.Debug("duplicate value rejected", "key", e.Key)
		}
		return analysis.Entry{}, err
	}
	s.logger.Info("entry created", "key", created.Key, "length", created.Length)
	return created, nil
}

// List parses params into filters and an ordering, and returns the matches.
func (s *Service) List(ctx context.Context, params map[string]string) (ListResult, error) {
	filters, err := query.Parse(params)
	if err != nil {
		return ListResult{}, err
	}
	ordering, err := query.ParseOrdering(params[query.ParamOrdering])
	if err != nil {
		return ListResult{}, err
	}

	entries, err := s.scan(ctx, filters)
	if err != nil {
		return ListResult{}, err
	}
	ordering.Sort(entries)
	return ListResult{Entries: entries, Count: len(entries), Filters: filters}, nil
}

// Get resolves valueOrKey as an exact value first, then as a content key.
func (s *Service) Get(ctx context.Context, valueOrKey string) (analysis.Entry, error) {
	e, err := s.repo.GetByValue(ctx, valueOrKey)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return e, err
	}
	return s.repo.Get(ctx, valueOrKey)
}

// Delete resolves valueOrKey like Get and removes the entry.
func (s *Service) Delete(ctx context.Context, valueOrKey string) error {
	e, err := s.Get(ctx, valueOrKey)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, e.Key); err != nil {
		return err
	}
	s.logger.Info("entry deleted", "key", e.Key)
	return nil
}

// Interpret translates text into filters and returns the matches.
func (s *Service) Interpret(ctx context.Context, text string) (InterpretResult, error) {
	if strings.TrimSpace(text) == "" {
		return InterpretResult{}, ErrMissingQuery
	}
	filters, err := nlquery.Translate(text)
	if err != nil {
		return InterpretResult{}, err
	}
	if filters.Conflicting() {
		return InterpretResult{}, ErrConflictingFilters
	}

	entries, err := s.scan(ctx, filters)
	if err != nil {
		return InterpretResult{}, err
	}
	query.Ordering{}.Sort(entries)
	return InterpretResult{Entries: entries, Count: len(entries), Original: text, Filters: filters}, nil
}

// scan skips the repository for bounds that cannot both hold.
func (s *Service) scan(ctx context.Context, filters query.Filters) ([]analysis.Entry, error) {
	if filters.Conflicting() {
		return []analysis.Entry{}, nil
	}
	entries, err := s.repo.Scan(ctx, filters)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []analysis.Entry{}
	}
	s.logger.Debug("scan complete", "matches", len(entries), "contains_mode", s.repo.ContainsMode().String())
	return entries, nil
}
