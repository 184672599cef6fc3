package backoffice

import (
	"fmt"
	"sync"
)

// TableHook lets packages register tables during init().
type TableHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []TableHook
)

// RegisterTableHook registers a hook executed against new registries.
func RegisterTableHook(h TableHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements TableRegistry with hook and manifest support.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]Table
	order  []string
}

var _ TableRegistry = (*Registry)(nil)

// NewRegistry registers tables in order and applies global hooks.
func NewRegistry(tables ...Table) *Registry {
	reg := &Registry{tables: map[string]Table{}}
	for _, table := range tables {
		_ = reg.Register(table)
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewDefaultRegistry builds a registry holding the built-in tables.
func NewDefaultRegistry(src Sources) (*Registry, error) {
	tables, err := DefaultTables(src)
	if err != nil {
		return nil, err
	}
	return NewRegistry(tables...), nil
}

// ApplyHooks executes registered table hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register stores a table, replacing any table with the same code in place.
func (r *Registry) Register(table Table) error {
	if table == nil {
		return fmt.Errorf("backoffice: table cannot be nil")
	}
	code := table.Descriptor().Code
	if code == "" {
		return fmt.Errorf("backoffice: table code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[code]; !exists {
		r.order = append(r.order, code)
	}
	r.tables[code] = table
	return nil
}

// Table fetches a table by code.
func (r *Registry) Table(code string) (Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[code]
	return table, ok
}

// Tables returns every table in registration order.
func (r *Registry) Tables() []Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Table, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.tables[code])
	}
	return out
}

// Descriptors returns every table descriptor in registration order.
func (r *Registry) Descriptors() []TableDescriptor {
	tables := r.Tables()
	out := make([]TableDescriptor, len(tables))
	for i, table := range tables {
		out[i] = table.Descriptor()
	}
	return out
}

// ApplyOverride rebuilds a registered table with overridden metadata.
func (r *Registry) ApplyOverride(o TableOverride) error {
	table, ok := r.Table(o.Code)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, o.Code)
	}
	updated, err := table.WithOverride(o)
	if err != nil {
		return fmt.Errorf("backoffice: override %s: %w", o.Code, err)
	}
	return r.Register(updated)
}
