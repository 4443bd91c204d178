// Package cache defines the domain cache contract for URL records keyed by
// short code (C5), and its concrete implementations: a sharded in-memory
// cache with single-flight coalescing (C6), single-node and highly
// available Redis-backed caches (C7/C8), a two-level composition (C9), and
// a Bloom-filter accelerator (C10).
package cache

import (
	"context"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// FetchFunc produces the authoritative value for a key on a cache miss. It
// is supplied by the caller of GetOrCompute, typically backed by a record
// store.
type FetchFunc func(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error)

// UrlCache is a cache for URL records keyed by short code. All methods must
// be safe for concurrent use by multiple goroutines.
//
// Get never fabricates a value: it returns (nil, nil) for a key that was
// never Set (I4). Del is idempotent; deleting an absent key is not an
// error (I6). Implementations that advertise single-flight semantics must
// invoke the fetch function supplied to GetOrCompute at most once per
// distinct in-flight key (I7); implementations that do not may embed
// DefaultGetOrCompute, which offers no coalescing guarantee.
type UrlCache interface {
	// Get returns the cached record for code, or (nil, nil) on a miss.
	Get(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error)

	// Set stores record under code. After Set returns without error, a
	// subsequent Get in the same cache layer observes record until evicted
	// by capacity, TTL, or explicit Del (I5).
	Set(ctx context.Context, code shortcode.ShortCode, record *wormhole.UrlRecord) error

	// Del removes code if present. Absence of code is not an error (I6).
	Del(ctx context.Context, code shortcode.ShortCode) error

	// GetOrCompute returns the cached record for code, invoking fetch on a
	// miss and storing its result (when non-nil) before returning it.
	GetOrCompute(ctx context.Context, code shortcode.ShortCode, fetch FetchFunc) (*wormhole.UrlRecord, error)
}

// DefaultGetOrCompute implements the non-coalescing fallback described in
// spec section 4.5: Get, then on miss call fetch, then Set on a non-nil
// result, then return. It offers no single-flight guarantee — concurrent
// callers that all miss will each invoke fetch. Implementations that do not
// override GetOrCompute with a coalescing strategy should delegate to this.
func DefaultGetOrCompute(ctx context.Context, c UrlCache, code shortcode.ShortCode, fetch FetchFunc) (*wormhole.UrlRecord, error) {
	if record, err := c.Get(ctx, code); err != nil {
		return nil, err
	} else if record != nil {
		return record, nil
	}

	record, err := fetch(ctx, code)
	if err != nil {
		return nil, err
	}
	if record != nil {
		if err := c.Set(ctx, code, record); err != nil {
			return nil, err
		}
	}
	return record, nil
}
