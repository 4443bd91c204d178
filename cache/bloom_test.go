package cache

import (
	"context"
	"testing"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

func newTestBloom(t *testing.T) (*BloomCache, *MemoryCache) {
	t.Helper()
	inner := NewMemoryCache(MemoryCacheOptions{Capacity: 1000})
	b, err := NewBloomCache(BloomCacheOptions{ExpectedItems: 1000, FalsePositiveRate: 0.01}, inner, nil)
	if err != nil {
		t.Fatal(err)
	}
	return b, inner
}

func TestNewBloomCache_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	inner := NewMemoryCache(MemoryCacheOptions{Capacity: 10})
	if _, err := NewBloomCache(BloomCacheOptions{ExpectedItems: 0, FalsePositiveRate: 0.01}, inner, nil); err == nil {
		t.Fatal("expected error for zero expected items")
	}
	if _, err := NewBloomCache(BloomCacheOptions{ExpectedItems: 10, FalsePositiveRate: 0}, inner, nil); err == nil {
		t.Fatal("expected error for zero false positive rate")
	}
	if _, err := NewBloomCache(BloomCacheOptions{ExpectedItems: 10, FalsePositiveRate: 1.5}, inner, nil); err == nil {
		t.Fatal("expected error for out-of-range false positive rate")
	}
}

// No false negatives: a never-inserted key is a miss, and a key passed to
// Set is always found afterward rather than short-circuited by the filter.
func TestBloomCache_NoFalseNegatives(t *testing.T) {
	t.Parallel()
	b, _ := newTestBloom(t)
	ctx := context.Background()
	k := code(t, "bloom-present")
	record := &wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if got, err := b.Get(ctx, k); err != nil || got != nil {
		t.Fatalf("want miss before insertion, got (%v, %v)", got, err)
	}
	if err := b.Set(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	got, err := b.Get(ctx, k)
	if err != nil || got == nil || got.OriginalURL != record.OriginalURL {
		t.Fatalf("want hit after Set, got (%+v, %v)", got, err)
	}
}

func TestBloomCache_DelDoesNotRemoveFromFilter(t *testing.T) {
	t.Parallel()
	b, inner := newTestBloom(t)
	ctx := context.Background()
	k := code(t, "bloom-deleted")
	record := &wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if err := b.Set(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	if err := b.Del(ctx, k); err != nil {
		t.Fatal(err)
	}
	// The wrapped cache correctly reports the miss even though the filter
	// may still claim the key might be present.
	if got, _ := inner.Get(ctx, k); got != nil {
		t.Fatal("expected wrapped cache to report a miss after Del")
	}
	if got, err := b.Get(ctx, k); err != nil || got != nil {
		t.Fatalf("want miss after Del, got (%v, %v)", got, err)
	}
}

func TestBloomCache_GetOrComputeShortCircuitsThenPopulates(t *testing.T) {
	t.Parallel()
	b, inner := newTestBloom(t)
	ctx := context.Background()
	k := code(t, "bloom-fetch")

	calls := 0
	fetch := func(ctx context.Context, _ shortcode.ShortCode) (*wormhole.UrlRecord, error) {
		calls++
		return &wormhole.UrlRecord{OriginalURL: "https://example.com"}, nil
	}
	record, err := b.GetOrCompute(ctx, k, fetch)
	if err != nil || record == nil {
		t.Fatalf("unexpected (%v, %v)", record, err)
	}
	if calls != 1 {
		t.Fatalf("want 1 fetch call, got %d", calls)
	}
	if got, _ := inner.Get(ctx, k); got == nil {
		t.Fatal("expected the wrapped cache to be populated")
	}
}
