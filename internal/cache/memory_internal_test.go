package cache

import (
	"context"
	"testing"
	"time"
)

func newTestMemory(maxEntries int, now *time.Time) *Memory {
	c := NewMemory(maxEntries)
	c.now = func() time.Time { return *now }

	return c
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache := newTestMemory(2, &now)

	if err := cache.Set(ctx, "key", "value", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	summary, ok, err := cache.Get(ctx, "key")
	if err != nil || !ok {
		t.Fatalf("expected cached summary to be present, ok=%v err=%v", ok, err)
	}

	if summary != "value" {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache := newTestMemory(2, &now)

	_ = cache.Set(ctx, "key", "value", time.Minute)
	now = now.Add(2 * time.Minute)

	if _, ok, _ := cache.Get(ctx, "key"); ok {
		t.Fatalf("expected cache entry to expire")
	}

	if cache.Len() != 0 {
		t.Fatalf("expected expired cache entry to be removed")
	}
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache := newTestMemory(2, &now)

	_ = cache.Set(ctx, "a", "summary-a", time.Hour)
	_ = cache.Set(ctx, "b", "summary-b", time.Hour)

	if _, ok, _ := cache.Get(ctx, "a"); !ok {
		t.Fatalf("expected entry a to exist before eviction check")
	}

	_ = cache.Set(ctx, "c", "summary-c", time.Hour)

	if _, ok, _ := cache.Get(ctx, "a"); !ok {
		t.Fatalf("expected entry a to remain after evicting least recently used")
	}

	if _, ok, _ := cache.Get(ctx, "b"); ok {
		t.Fatalf("expected entry b to be evicted")
	}

	if _, ok, _ := cache.Get(ctx, "c"); !ok {
		t.Fatalf("expected entry c to be cached")
	}
}

func TestMemoryIgnoresUnusableEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache := newTestMemory(2, &now)

	_ = cache.Set(ctx, "", "value", time.Hour)
	_ = cache.Set(ctx, "empty", "", time.Hour)
	_ = cache.Set(ctx, "no-ttl", "value", 0)

	if cache.Len() != 0 {
		t.Fatalf("expected nothing to be stored, got %d entries", cache.Len())
	}
}

func TestNoopNeverHits(t *testing.T) {
	ctx := context.Background()
	var c Cache = Noop{}

	if err := c.Set(ctx, "key", "value", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok, err := c.Get(ctx, "key"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}
