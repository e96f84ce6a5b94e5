package geo

import "sync"

// Cache is an injectable in-memory IP-to-location cache. It is owned by
// whoever mounts it (the dashboard data-fetch hook) rather than being
// module-level state, so it can be reset deterministically.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Result)}
}

// Get returns the cached result for ip, if any.
func (c *Cache) Get(ip string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[ip]
	return result, ok
}

// Put stores the result for ip.
func (c *Cache) Put(ip string, result Result) {
	c.mu.Lock()
	c.entries[ip] = result
	c.mu.Unlock()
}

// Len reports the number of cached addresses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
