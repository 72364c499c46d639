package suggest

import (
	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto/v2"
)

// Cache memoizes ranked results per query. The dictionary behind a Completer or
// Corrector never changes, so entries never go stale; a nil *Cache is a valid,
// disabled cache.
type Cache[V any] struct {
	c *ristretto.Cache[string, V]
}

// NewCache creates a cache holding up to maxCost result items in total. Only
// the cost passed to Set counts; ristretto's own bookkeeping is ignored.
func NewCache[V any](maxCost int64) (*Cache[V], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters:        max(maxCost*10, 1000), // ~10x expected items
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[V]{c: c}, nil
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	if c == nil {
		var zero V
		return zero, false
	}
	return c.c.Get(key)
}

// Set stores value with the given cost. Admission is asynchronous and may be
// refused under pressure.
func (c *Cache[V]) Set(key string, value V, cost int64) {
	if c == nil {
		return
	}
	if !c.c.Set(key, value, max(cost, 1)) {
		log.Debug("cache rejected entry", "key", key)
	}
}

// Wait blocks until pending sets are applied.
func (c *Cache[V]) Wait() {
	if c != nil {
		c.c.Wait()
	}
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	if c != nil {
		c.c.Clear()
	}
}

// Close releases the cache goroutines.
func (c *Cache[V]) Close() {
	if c != nil {
		c.c.Close()
	}
}
