package cache

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// BloomCacheOptions sizes the Bloom filter fronting a BloomCache.
type BloomCacheOptions struct {
	// ExpectedItems is an estimate of the number of unique short codes
	// expected to be cached. Too low a value raises the false positive
	// rate.
	ExpectedItems uint

	// FalsePositiveRate is the desired false positive probability in
	// (0, 1), e.g. 0.01 for ~1%.
	FalsePositiveRate float64
}

// BloomCache decorates a UrlCache with a Bloom filter for fast negative
// lookups: a filter "definitely not present" verdict short-circuits Get
// without querying the wrapped cache. The filter has no false negatives,
// only false positives, so a "might be present" verdict always falls
// through to the wrapped cache to confirm.
//
// Deletion is not reflected in the filter (Bloom filters do not support
// removal): after Del, the filter may still report a deleted code as
// present, in which case Get correctly falls through and the wrapped
// cache reports the miss. The false-positive rate for deleted codes only
// ever grows; periodic filter rebuilds are the mitigation for workloads
// with heavy churn.
type BloomCache struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	cache  UrlCache
	metric Metrics
}

// NewBloomCache constructs a BloomCache wrapping cache, sized per opt.
// Returns a KindInitialization error if opt's parameters are invalid.
func NewBloomCache(opt BloomCacheOptions, cache UrlCache, metric Metrics) (*BloomCache, error) {
	if opt.ExpectedItems == 0 {
		return nil, newErr(KindInitialization, "new_bloom_cache", errZeroExpectedItems)
	}
	if opt.FalsePositiveRate <= 0 || opt.FalsePositiveRate >= 1 {
		return nil, newErr(KindInitialization, "new_bloom_cache", errInvalidFalsePositiveRate)
	}
	if metric == nil {
		metric = NoopMetrics{}
	}
	filter := bloom.NewWithEstimates(opt.ExpectedItems, opt.FalsePositiveRate)
	return &BloomCache{filter: filter, cache: cache, metric: metric}, nil
}

// Get checks the Bloom filter first; a "definitely not present" verdict
// returns a miss without querying the wrapped cache.
func (b *BloomCache) Get(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	b.mu.RLock()
	mightExist := b.filter.TestString(code.AsStr())
	b.mu.RUnlock()

	if !mightExist {
		b.metric.BloomShortCircuit()
		return nil, nil
	}
	return b.cache.Get(ctx, code)
}

// Set adds code to the Bloom filter, then stores record in the wrapped
// cache. Filter insertion happens before the wrapped Set (insert-before-
// set ordering) so a concurrent Get can never observe "absent" for a key
// whose Set has already completed.
func (b *BloomCache) Set(ctx context.Context, code shortcode.ShortCode, record *wormhole.UrlRecord) error {
	b.mu.Lock()
	b.filter.AddString(code.AsStr())
	b.mu.Unlock()

	return b.cache.Set(ctx, code, record)
}

// Del removes code from the wrapped cache only; the Bloom filter is
// append-only and is not updated.
func (b *BloomCache) Del(ctx context.Context, code shortcode.ShortCode) error {
	return b.cache.Del(ctx, code)
}

// GetOrCompute checks the filter, then either short-circuits to fetch
// directly (recording the result in both the filter and the wrapped
// cache) or delegates to the wrapped cache's own GetOrCompute.
func (b *BloomCache) GetOrCompute(ctx context.Context, code shortcode.ShortCode, fetch FetchFunc) (*wormhole.UrlRecord, error) {
	b.mu.RLock()
	mightExist := b.filter.TestString(code.AsStr())
	b.mu.RUnlock()

	if !mightExist {
		b.metric.BloomShortCircuit()
		record, err := fetch(ctx, code)
		if err != nil || record == nil {
			return record, err
		}
		if err := b.Set(ctx, code, record); err != nil {
			return nil, err
		}
		return record, nil
	}
	return b.cache.GetOrCompute(ctx, code, fetch)
}

var _ UrlCache = (*BloomCache)(nil)
