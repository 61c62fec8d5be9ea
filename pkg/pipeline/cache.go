package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a completed comparison stays fresh.
const DefaultCacheTTL = 24 * time.Hour

// Cache stores completed comparison results keyed by listing URL.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(url string) (*Result, bool)
	Set(url string, result *Result)
}

// CacheKey derives the stable cache key for a listing URL.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache for comparison results.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewMemoryCache creates a cache whose entries expire after ttl.
// A non-positive ttl falls back to DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached result for url, or false when absent or
// expired. Expired entries are evicted on read.
func (c *MemoryCache) Get(url string) (*Result, bool) {
	key := CacheKey(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.result, true
}

// Set stores a result for url with a fresh TTL.
func (c *MemoryCache) Set(url string, result *Result) {
	key := CacheKey(url)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Len reports the number of stored entries, including any not yet
// evicted after expiry.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
