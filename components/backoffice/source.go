package backoffice

import (
	"context"
	"slices"
	"sync"
)

// Source fetches the records behind a table. Filters carry the active
// exact-match filters so remote sources may push them down; the table
// re-applies them in memory either way.
type Source[T any] interface {
	Fetch(ctx context.Context, filters map[string]string) ([]T, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc[T any] func(ctx context.Context, filters map[string]string) ([]T, error)

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context, filters map[string]string) ([]T, error) {
	return f(ctx, filters)
}

// StaticSource serves a fixed record list. Fetch returns a copy.
type StaticSource[T any] struct {
	mu      sync.RWMutex
	records []T
}

// NewStaticSource copies records into a new source.
func NewStaticSource[T any](records []T) *StaticSource[T] {
	return &StaticSource[T]{records: slices.Clone(records)}
}

// Fetch ignores filters and returns every record.
func (s *StaticSource[T]) Fetch(ctx context.Context, _ map[string]string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

// Replace swaps the served records.
func (s *StaticSource[T]) Replace(records []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.Clone(records)
}
