package backoffice

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// TablePreferences are per-viewer adjustments to one table.
type TablePreferences struct {
	PageSize      int             `json:"page_size,omitempty"`
	Sort          string          `json:"sort,omitempty"`
	ColumnOrder   []string        `json:"column_order,omitempty"`
	HiddenColumns map[string]bool `json:"hidden_columns,omitempty"`
}

// InMemoryPreferenceStore provides a concurrency-safe default store.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]TablePreferences
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]TablePreferences),
	}
}

// TablePreferences returns stored preferences or empty defaults.
func (s *InMemoryPreferenceStore) TablePreferences(_ context.Context, viewer ViewerContext, table string) (TablePreferences, error) {
	if viewer.UserID == "" {
		return normalizePreferences(TablePreferences{}), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.data[preferenceKey(viewer, table)]
	if !ok {
		return normalizePreferences(TablePreferences{}), nil
	}
	return clonePreferences(prefs), nil
}

// SaveTablePreferences persists preferences for a viewer and table.
func (s *InMemoryPreferenceStore) SaveTablePreferences(_ context.Context, viewer ViewerContext, table string, prefs TablePreferences) error {
	if viewer.UserID == "" {
		return ErrMissingViewer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[preferenceKey(viewer, table)] = clonePreferences(prefs)
	return nil
}

func preferenceKey(viewer ViewerContext, table string) string {
	return viewer.UserID + "::" + table
}

func normalizePreferences(prefs TablePreferences) TablePreferences {
	if prefs.HiddenColumns == nil {
		prefs.HiddenColumns = map[string]bool{}
	}
	return prefs
}

func clonePreferences(prefs TablePreferences) TablePreferences {
	prefs.ColumnOrder = slices.Clone(prefs.ColumnOrder)
	prefs.HiddenColumns = maps.Clone(prefs.HiddenColumns)
	return normalizePreferences(prefs)
}
