// Package cache provides the bounded memoization layer for resolved archives
// and loaded documents. Caches are explicit objects constructed once and
// passed by reference to the resolver and lookup paths; there is no implicit
// package-level singleton. Entries are evicted LRU when the bound is hit and
// can be dropped wholesale with Purge.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Default bounds. Archives are few; documents can number in the hundreds of
// thousands across large archive sets, so that bound is what actually caps
// memory growth on long-running servers.
const (
	DefaultArchiveEntries  = 128
	DefaultDocumentEntries = 2048
)

// Cache is a bounded string-keyed LRU cache.
type Cache[V any] struct {
	inner *lru.Cache[string, V]
}

// New creates a bounded cache. Size must be positive.
func New[V any](size int) (*Cache[V], error) {
	inner, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cache[V]{inner: inner}, nil
}

// Get returns the cached value for key, if present.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.inner.Get(key)
}

// Add stores a value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache[V]) Add(key string, value V) {
	c.inner.Add(key, value)
}

// Remove drops a single entry.
func (c *Cache[V]) Remove(key string) {
	c.inner.Remove(key)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.inner.Len()
}

// Purge drops every entry. This is the explicit full-clear operation; nothing
// else empties the cache.
func (c *Cache[V]) Purge() {
	c.inner.Purge()
}

// DocumentKey builds the document cache key for (archive, id). Article keys
// carry a prefix so an article and a symbol with the same id never collide.
func DocumentKey(archive, id string, article bool) string {
	if article {
		return archive + "\x00article:" + id
	}
	return archive + "\x00" + id
}
