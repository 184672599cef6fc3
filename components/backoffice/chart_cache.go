package backoffice

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

// RenderCache memoizes rendered chart HTML per table and query.
type RenderCache interface {
	GetOrRender(table string, q tableview.Query, render func() (string, error)) (string, error)
	InvalidateTable(table string)
}

// ChartCache keeps rendered charts in memory until they expire or their table changes.
type ChartCache struct {
	ttl    time.Duration
	now    func() time.Time
	mu     sync.Mutex
	tables map[string]map[string]cachedChart
}

var _ RenderCache = (*ChartCache)(nil)

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:    ttl,
		now:    time.Now,
		tables: make(map[string]map[string]cachedChart),
	}
}

// GetOrRender returns the cached chart for table and q, rendering it on a miss.
// Render errors are returned and never cached.
func (c *ChartCache) GetOrRender(table string, q tableview.Query, render func() (string, error)) (string, error) {
	if c.ttl <= 0 {
		return render()
	}
	key := queryHash(q)
	if html, ok := c.lookup(table, key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	entries := c.tables[table]
	if entries == nil {
		entries = make(map[string]cachedChart)
		c.tables[table] = entries
	}
	entries[key] = cachedChart{html: html, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return html, nil
}

// InvalidateTable drops every chart cached for table.
func (c *ChartCache) InvalidateTable(table string) {
	c.mu.Lock()
	delete(c.tables, table)
	c.mu.Unlock()
}

// Len returns the number of cached charts across tables, expired ones included.
func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, entries := range c.tables {
		n += len(entries)
	}
	return n
}

func (c *ChartCache) lookup(table, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.tables[table][key]
	if !ok {
		return "", false
	}
	if !c.now().Before(entry.expires) {
		delete(c.tables[table], key)
		return "", false
	}
	return entry.html, true
}

// queryHash returns a deterministic hash for a table query. Map keys are
// marshalled in sorted order so filter order does not matter.
func queryHash(q tableview.Query) string {
	b, err := json.Marshal(q)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
