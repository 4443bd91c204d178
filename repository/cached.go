package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/wormhole-url/wormhole/cache"
	"github.com/wormhole-url/wormhole/internal/singleflight"
	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// Cached is a read-through decorator composing any ReadStore with any
// cache.UrlCache.
//
// Get checks the cache first. A cache error is downgraded to a warning log
// and treated as a miss — the store remains the source of truth, so a
// flaky cache must never turn into a read failure. Store errors propagate
// unchanged. Concurrent Get calls for the same code that all miss the
// cache coalesce into a single store read (I7), using an internal-flight
// registry independent of whatever coalescing the wrapped cache itself
// provides.
type Cached struct {
	inner  ReadStore
	cache  cache.UrlCache
	sf     singleflight.Group[shortcode.ShortCode, *wormhole.UrlRecord]
	logger *zap.Logger
}

// NewCached composes inner and c. logger may be nil (zap.NewNop()).
func NewCached(inner ReadStore, c cache.UrlCache, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{inner: inner, cache: c, logger: logger}
}

// Inner returns the wrapped store.
func (c *Cached) Inner() ReadStore { return c.inner }

// Cache returns the wrapped cache.
func (c *Cached) Cache() cache.UrlCache { return c.cache }

// Get returns the record for code, preferring the cache.
func (c *Cached) Get(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	record, err := c.cache.Get(ctx, code)
	if err != nil {
		c.logger.Warn("cache read failed, falling back to store",
			zap.String("code", code.AsStr()), zap.Error(err))
	} else if record != nil {
		return record, nil
	}

	return c.sf.Do(ctx, code, func() (*wormhole.UrlRecord, error) {
		record, err := c.inner.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		if record != nil {
			if err := c.cache.Set(ctx, code, record); err != nil {
				c.logger.Warn("cache backfill failed after store hit",
					zap.String("code", code.AsStr()), zap.Error(err))
			}
		}
		return record, nil
	})
}

// Exists reports whether code is present, preferring the cache (a hit
// implies existence) and falling back to the store otherwise.
func (c *Cached) Exists(ctx context.Context, code shortcode.ShortCode) (bool, error) {
	record, err := c.cache.Get(ctx, code)
	if err != nil {
		c.logger.Warn("cache read failed on existence check, falling back to store",
			zap.String("code", code.AsStr()), zap.Error(err))
	} else if record != nil {
		return true, nil
	}
	return c.inner.Exists(ctx, code)
}

// Invalidate removes code from the cache. Useful after an out-of-band
// mutation (e.g. a writer-path delete) so the next Get observes fresh data.
func (c *Cached) Invalidate(ctx context.Context, code shortcode.ShortCode) error {
	return c.cache.Del(ctx, code)
}

var _ ReadStore = (*Cached)(nil)
