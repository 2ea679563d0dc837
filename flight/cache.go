package flight

import (
	"sort"
	"sync"
)

// Cache is the in-process inventory of bookable flights keyed by code.
// Reads never touch storage; it is refreshed with Replace and kept in step
// with schedule edits through Put and Remove.
type Cache struct {
	mu      sync.RWMutex
	flights map[string]Flight
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{flights: make(map[string]Flight)}
}

// Replace swaps the cache contents for flights in one step.
func (c *Cache) Replace(flights []*Flight) {
	next := make(map[string]Flight, len(flights))
	for _, f := range flights {
		if f == nil {
			continue
		}
		next[f.Code] = *f
	}

	c.mu.Lock()
	c.flights = next
	c.mu.Unlock()
}

// Put adds or overwrites a flight.
func (c *Cache) Put(f Flight) {
	c.mu.Lock()
	c.flights[f.Code] = f
	c.mu.Unlock()
}

// Remove evicts a flight and reports whether it was present.
func (c *Cache) Remove(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.flights[code]
	delete(c.flights, code)
	return ok
}

// Lookup returns the cached flight for code.
func (c *Cache) Lookup(code string) (Flight, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.flights[code]
	return f, ok
}

// Snapshot returns all cached flights ordered by code.
func (c *Cache) Snapshot() []Flight {
	c.mu.RLock()
	out := make([]Flight, 0, len(c.flights))
	for _, f := range c.flights {
		out = append(out, f)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of cached flights.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.flights)
}
