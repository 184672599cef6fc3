// Package tableview filters, sorts and paginates in-memory record lists.
//
// A Definition describes which fields of a record type can be searched,
// filtered and sorted. Apply runs a Query against a slice of records and
// returns one page plus the pagination metadata needed to render the rest.
// The computation is pure: the input slice is never reordered and identical
// inputs always produce identical results.
package tableview

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// DefaultPageSize is used when neither the query nor the definition sets one.
	DefaultPageSize = 10
	// MaxPageSize bounds page sizes accepted from callers.
	MaxPageSize = 100
	// FilterAll is the filter value that disables a filter.
	FilterAll = "all"
)

var (
	ErrUnknownFilter     = errors.New("tableview: unknown filter field")
	ErrUnknownSort       = errors.New("tableview: unknown sort key")
	ErrSearchUnsupported = errors.New("tableview: search is not supported for this table")
	ErrInvalidPageSize   = errors.New("tableview: page size must be between 1 and 100")
)

// Field projects a record onto the string used for search and exact-match filters.
type Field[T any] struct {
	Key   string
	Value func(T) string
}

// SortOption names a comparator. Compare follows the cmp.Compare contract.
type SortOption[T any] struct {
	Key     string
	Compare func(a, b T) int
}

// Definition configures how a record type is searched, filtered and sorted.
type Definition[T any] struct {
	Search      []Field[T]
	Filters     []Field[T]
	Sorts       []SortOption[T]
	DefaultSort string
	PageSize    int
}

// Query is the caller-controlled view state. Page is 1-indexed.
type Query struct {
	Search   string            `json:"search,omitempty" yaml:"search,omitempty"`
	Filters  map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sort     string            `json:"sort,omitempty" yaml:"sort,omitempty"`
	Page     int               `json:"page" yaml:"page"`
	PageSize int               `json:"page_size,omitempty" yaml:"page_size,omitempty"`
}

// Result is a single page of records plus pagination metadata.
type Result[T any] struct {
	Records    []T
	TotalCount int
	TotalPages int
	Page       int
	PageSize   int
	Sort       string
}

// NoResults reports whether the page is empty, either because nothing matched
// or because the requested page is outside [1, TotalPages].
func (r Result[T]) NoResults() bool {
	return len(r.Records) == 0
}

// ActiveFilters returns the filters that constrain results, dropping empty and "all" values.
func (q Query) ActiveFilters() map[string]string {
	active := make(map[string]string, len(q.Filters))
	for key, value := range q.Filters {
		if isActive(value) {
			active[key] = strings.TrimSpace(value)
		}
	}
	return active
}

// Validate checks the query against the definition without touching any records.
func (d Definition[T]) Validate(q Query) error {
	for key, value := range q.Filters {
		if !isActive(value) {
			continue
		}
		if _, ok := d.filterField(key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFilter, key)
		}
	}
	if q.Sort != "" {
		if _, ok := d.sortOption(q.Sort); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSort, q.Sort)
		}
	}
	if strings.TrimSpace(q.Search) != "" && len(d.Search) == 0 {
		return ErrSearchUnsupported
	}
	if q.PageSize < 0 || q.PageSize > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, q.PageSize)
	}
	return nil
}

// Apply filters, sorts and paginates records.
func (d Definition[T]) Apply(records []T, q Query) (Result[T], error) {
	if err := d.Validate(q); err != nil {
		return Result[T]{}, err
	}
	sortKey := d.EffectiveSort(q.Sort)
	sorted := d.Sort(d.Filter(records, q), sortKey)
	size := d.EffectivePageSize(q.PageSize)
	return Result[T]{
		Records:    Paginate(sorted, q.Page, size),
		TotalCount: len(sorted),
		TotalPages: TotalPages(len(sorted), size),
		Page:       q.Page,
		PageSize:   size,
		Sort:       sortKey,
	}, nil
}

// Filter returns the records matching every active filter and the search
// query, preserving source order. Unknown filter keys match nothing; call
// Validate first to report them instead.
func (d Definition[T]) Filter(records []T, q Query) []T {
	active := q.ActiveFilters()
	search := strings.ToLower(strings.TrimSpace(q.Search))
	if len(active) == 0 && search == "" {
		return slices.Clone(records)
	}

	type predicate struct {
		field Field[T]
		value string
	}
	predicates := make([]predicate, 0, len(active))
	for key, value := range active {
		field, ok := d.filterField(key)
		if !ok {
			return []T{}
		}
		predicates = append(predicates, predicate{field: field, value: value})
	}

	filtered := make([]T, 0, len(records))
	for _, record := range records {
		if !d.matchesSearch(record, search) {
			continue
		}
		matched := true
		for _, p := range predicates {
			if p.field.Value(record) != p.value {
				matched = false
				break
			}
		}
		if matched {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// Sort returns a stably sorted copy. An empty or unknown key keeps source order.
func (d Definition[T]) Sort(records []T, key string) []T {
	sorted := slices.Clone(records)
	option, ok := d.sortOption(key)
	if !ok || option.Compare == nil {
		return sorted
	}
	slices.SortStableFunc(sorted, option.Compare)
	return sorted
}

// EffectiveSort resolves the sort key actually applied for a requested key.
func (d Definition[T]) EffectiveSort(requested string) string {
	if requested != "" {
		return requested
	}
	return d.DefaultSort
}

// EffectivePageSize resolves the page size actually applied for a requested size.
func (d Definition[T]) EffectivePageSize(requested int) int {
	if requested > 0 {
		return requested
	}
	if d.PageSize > 0 {
		return d.PageSize
	}
	return DefaultPageSize
}

// Paginate slices one 1-indexed page out of records. Pages outside the
// available range yield an empty, non-nil slice.
func Paginate[T any](records []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return []T{}
	}
	if page-1 >= TotalPages(len(records), pageSize) {
		return []T{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(records))
	return slices.Clone(records[start:end])
}

// TotalPages is ceil(total/pageSize), zero when there is nothing to show.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}

// Descending inverts a comparator.
func Descending[T any](compare func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		return compare(b, a)
	}
}

func (d Definition[T]) matchesSearch(record T, search string) bool {
	if search == "" {
		return true
	}
	for _, field := range d.Search {
		if strings.Contains(strings.ToLower(field.Value(record)), search) {
			return true
		}
	}
	return false
}

func (d Definition[T]) filterField(key string) (Field[T], bool) {
	for _, field := range d.Filters {
		if field.Key == key {
			return field, true
		}
	}
	return Field[T]{}, false
}

func (d Definition[T]) sortOption(key string) (SortOption[T], bool) {
	for _, option := range d.Sorts {
		if option.Key == key {
			return option, true
		}
	}
	return SortOption[T]{}, false
}

func isActive(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && !strings.EqualFold(value, FilterAll)
}
