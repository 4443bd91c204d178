package cache

import (
	"context"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// LayeredCache composes two UrlCache implementations into a two-level
// cache: L1 is typically fast and local (MemoryCache), L2 is typically
// slower and shared (RedisCache/HACache).
//
//   - Get: try L1, then L2 on a miss; an L2 hit backfills L1.
//   - Set: write-through to L2 first, then L1.
//   - Del: remove from L1 then L2.
type LayeredCache struct {
	l1, l2 UrlCache
	metric Metrics
}

// NewLayeredCache composes l1 and l2. metric may be nil (NoopMetrics).
func NewLayeredCache(l1, l2 UrlCache, metric Metrics) *LayeredCache {
	if metric == nil {
		metric = NoopMetrics{}
	}
	return &LayeredCache{l1: l1, l2: l2, metric: metric}
}

// L1 returns the primary (faster) layer.
func (c *LayeredCache) L1() UrlCache { return c.l1 }

// L2 returns the secondary (slower) layer.
func (c *LayeredCache) L2() UrlCache { return c.l2 }

// Get tries L1, then L2; an L2 hit backfills L1 (I5 applies to each layer
// independently — a backfill failure does not fail the Get).
func (c *LayeredCache) Get(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	if record, err := c.l1.Get(ctx, code); err != nil {
		return nil, err
	} else if record != nil {
		return record, nil
	}

	record, err := c.l2.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	if err := c.l1.Set(ctx, code, record); err == nil {
		c.metric.Backfill()
	}
	return record, nil
}

// Set writes to L2 first (slower, more durable), then L1.
func (c *LayeredCache) Set(ctx context.Context, code shortcode.ShortCode, record *wormhole.UrlRecord) error {
	if err := c.l2.Set(ctx, code, record); err != nil {
		return err
	}
	return c.l1.Set(ctx, code, record)
}

// Del removes code from L1 then L2.
func (c *LayeredCache) Del(ctx context.Context, code shortcode.ShortCode) error {
	if err := c.l1.Del(ctx, code); err != nil {
		return err
	}
	return c.l2.Del(ctx, code)
}

// GetOrCompute chains through Get, then delegates the miss path to L1's
// own GetOrCompute so single-flight coalescing (when L1 is a MemoryCache)
// applies to the full fetch-and-populate path, not just the memory layer.
func (c *LayeredCache) GetOrCompute(ctx context.Context, code shortcode.ShortCode, fetch FetchFunc) (*wormhole.UrlRecord, error) {
	return c.l1.GetOrCompute(ctx, code, func(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
		record, err := c.l2.GetOrCompute(ctx, code, fetch)
		if err != nil || record == nil {
			return record, err
		}
		return record, nil
	})
}

var _ UrlCache = (*LayeredCache)(nil)
