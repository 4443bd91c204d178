package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/wormhole-url/wormhole/cache"
	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// memStore is a trivial in-memory Store test double.
type memStore struct {
	mu   sync.Mutex
	data map[shortcode.ShortCode]wormhole.UrlRecord
	gets int64
}

func newMemStore() *memStore {
	return &memStore{data: make(map[shortcode.ShortCode]wormhole.UrlRecord)}
}

func (s *memStore) Get(_ context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	atomic.AddInt64(&s.gets, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[code]
	if !ok {
		return nil, nil
	}
	cp := r
	return &cp, nil
}

func (s *memStore) Exists(ctx context.Context, code shortcode.ShortCode) (bool, error) {
	r, err := s.Get(ctx, code)
	return r != nil, err
}

func (s *memStore) Insert(_ context.Context, code shortcode.ShortCode, record wormhole.UrlRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[code]; ok {
		return newErr(KindConflict, "insert", nil)
	}
	s.data[code] = record
	return nil
}

func (s *memStore) Delete(_ context.Context, code shortcode.ShortCode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[code]
	delete(s.data, code)
	return ok, nil
}

var _ Store = (*memStore)(nil)

func testCode(t *testing.T, s string) shortcode.ShortCode {
	t.Helper()
	c, err := shortcode.New(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCached_GetFromStoreOnCacheMiss(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{Capacity: 100})
	cached := NewCached(store, c, nil)
	ctx := context.Background()
	k := testCode(t, "abc123")
	record := wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if err := store.Insert(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	got, err := cached.Get(ctx, k)
	if err != nil || got == nil || got.OriginalURL != record.OriginalURL {
		t.Fatalf("want %+v, got (%+v, %v)", record, got, err)
	}
}

func TestCached_GetFromCacheWhenHit(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{Capacity: 100})
	cached := NewCached(store, c, nil)
	ctx := context.Background()
	k := testCode(t, "abc123")
	record := &wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if err := c.Set(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	got, err := cached.Get(ctx, k)
	if err != nil || got == nil || got.OriginalURL != record.OriginalURL {
		t.Fatalf("want %+v, got (%+v, %v)", record, got, err)
	}
	if atomic.LoadInt64(&store.gets) != 0 {
		t.Fatal("expected the store to not be consulted on a cache hit")
	}
}

func TestCached_GetPopulatesCache(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{Capacity: 100})
	cached := NewCached(store, c, nil)
	ctx := context.Background()
	k := testCode(t, "abc123")
	record := wormhole.UrlRecord{OriginalURL: "https://example.com"}

	if err := store.Insert(ctx, k, record); err != nil {
		t.Fatal(err)
	}
	if _, err := cached.Get(ctx, k); err != nil {
		t.Fatal(err)
	}
	cachedRecord, err := c.Get(ctx, k)
	if err != nil || cachedRecord == nil || cachedRecord.OriginalURL != record.OriginalURL {
		t.Fatalf("expected cache to be populated, got (%+v, %v)", cachedRecord, err)
	}
}

func TestCached_ExistsChecksStoreWhenNotInCache(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{Capacity: 100})
	cached := NewCached(store, c, nil)
	ctx := context.Background()
	k := testCode(t, "abc123")

	if err := store.Insert(ctx, k, wormhole.UrlRecord{OriginalURL: "https://example.com"}); err != nil {
		t.Fatal(err)
	}
	exists, err := cached.Exists(ctx, k)
	if err != nil || !exists {
		t.Fatalf("want exists=true, got (%v, %v)", exists, err)
	}
}

func TestCached_InvalidateRemovesFromCache(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{Capacity: 100})
	cached := NewCached(store, c, nil)
	ctx := context.Background()
	k := testCode(t, "abc123")

	if err := c.Set(ctx, k, &wormhole.UrlRecord{OriginalURL: "https://example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := cached.Invalidate(ctx, k); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get(ctx, k); got != nil {
		t.Fatal("expected cache entry to be gone after Invalidate")
	}
}

// I7 — concurrent Get calls for the same key that all miss the cache
// coalesce into a single store read.
func TestCached_ConcurrentMissesCoalesce(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{Capacity: 100})
	cached := NewCached(store, c, nil)
	ctx := context.Background()
	k := testCode(t, "abc123")
	record := wormhole.UrlRecord{OriginalURL: "https://example.com"}
	if err := store.Insert(ctx, k, record); err != nil {
		t.Fatal(err)
	}

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			_, err := cached.Get(ctx, k)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&store.gets); got != 1 {
		t.Fatalf("want exactly 1 store read, got %d", got)
	}
}
