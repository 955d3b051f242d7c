package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements LabelCache in memory with no expiration.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates an empty label cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a label from the cache
func (c *MemoryCache) Get(id string) (string, bool) {
	if val, found := c.cache.Get(id); found {
		return val.(string), true
	}
	return "", false
}

// Set stores a label. An identifier that is already cached keeps its first
// label.
func (c *MemoryCache) Set(id string, label string) {
	_ = c.cache.Add(id, label, gocache.NoExpiration)
}

// Len returns the number of cached labels.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
