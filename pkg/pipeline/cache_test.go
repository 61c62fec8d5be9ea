package pipeline

import (
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://www.airbnb.com/rooms/1")
	b := CacheKey("https://www.airbnb.com/rooms/2")

	if a == b {
		t.Error("distinct URLs share a cache key")
	}
	if a != CacheKey("https://www.airbnb.com/rooms/1") {
		t.Error("cache key not stable")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	cache := NewMemoryCache(time.Hour)
	result := &Result{}

	if _, ok := cache.Get("https://www.airbnb.com/rooms/1"); ok {
		t.Fatal("hit on empty cache")
	}

	cache.Set("https://www.airbnb.com/rooms/1", result)

	got, ok := cache.Get("https://www.airbnb.com/rooms/1")
	if !ok || got != result {
		t.Errorf("Get() = %v, %v", got, ok)
	}
	if _, ok := cache.Get("https://www.airbnb.com/rooms/2"); ok {
		t.Error("hit for a different URL")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(24 * time.Hour)
	cache.now = func() time.Time { return now }

	cache.Set("https://www.airbnb.com/rooms/1", &Result{})

	now = now.Add(23 * time.Hour)
	if _, ok := cache.Get("https://www.airbnb.com/rooms/1"); !ok {
		t.Error("entry expired before its TTL")
	}

	now = now.Add(2 * time.Hour)
	if _, ok := cache.Get("https://www.airbnb.com/rooms/1"); ok {
		t.Error("entry survived past its TTL")
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d after eviction, want 0", cache.Len())
	}
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	cache := NewMemoryCache(0)
	if cache.ttl != DefaultCacheTTL {
		t.Errorf("ttl = %v, want %v", cache.ttl, DefaultCacheTTL)
	}
}
