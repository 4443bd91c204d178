package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

const defaultKeyPrefix = "wh:url:"

// RedisCacheOptions configures a RedisCache.
type RedisCacheOptions struct {
	// KeyPrefix namespaces every key this cache writes/reads. Defaults to
	// "wh:url:" when empty.
	KeyPrefix string

	// TTL applies to every Set call (Q2: TTL is a cache-level config knob,
	// not a per-call parameter). Zero means keys never expire.
	TTL time.Duration
}

// RedisCache is a single-node remote UrlCache backed by Redis. Records are
// JSON-encoded. It has no single-flight behavior of its own and delegates
// GetOrCompute to DefaultGetOrCompute.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing go-redis client.
func NewRedisCache(client *redis.Client, opt RedisCacheOptions) *RedisCache {
	prefix := opt.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, prefix: prefix, ttl: opt.TTL}
}

func (c *RedisCache) key(code shortcode.ShortCode) string {
	return c.prefix + code.AsStr()
}

// Get returns the cached record, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	data, err := c.client.Get(ctx, c.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, mapRedisErr("get", err, KindOperation)
	}
	record, err := wormhole.Unmarshal(data)
	if err != nil {
		return nil, newErr(KindInvalidData, "get", err)
	}
	return &record, nil
}

// Set stores record under code with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, code shortcode.ShortCode, record *wormhole.UrlRecord) error {
	data, err := record.Marshal()
	if err != nil {
		return newErr(KindSerialization, "set", err)
	}
	if err := c.client.Set(ctx, c.key(code), data, c.ttl).Err(); err != nil {
		return mapRedisErr("set", err, KindOperation)
	}
	return nil
}

// Del removes code if present.
func (c *RedisCache) Del(ctx context.Context, code shortcode.ShortCode) error {
	if err := c.client.Del(ctx, c.key(code)).Err(); err != nil {
		return mapRedisErr("del", err, KindOperation)
	}
	return nil
}

// GetOrCompute delegates to DefaultGetOrCompute: this layer offers no
// single-flight guarantee (per spec, coalescing is MemoryCache's job).
func (c *RedisCache) GetOrCompute(ctx context.Context, code shortcode.ShortCode, fetch FetchFunc) (*wormhole.UrlRecord, error) {
	return DefaultGetOrCompute(ctx, c, code, fetch)
}

// mapRedisErr classifies a go-redis error into the cache error taxonomy.
// defaultKind is the Kind assigned to a transport error that is neither a
// timeout nor a closed-client error — callers pick the Kind that matches
// their own component's taxonomy (C7's single node has no pool to exhaust,
// so its default is KindOperation; C8's Sentinel-backed pool reserves
// KindUnavailable for that default since a failed acquisition there really
// does mean "no reachable backend").
func mapRedisErr(op string, err error, defaultKind Kind) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "timed out") {
		return newErr(KindTimeout, op, err)
	}
	if errors.Is(err, redis.ErrClosed) {
		return newErr(KindUnavailable, op, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newErr(KindTimeout, op, err)
	}
	return newErr(defaultKind, op, err)
}

var _ UrlCache = (*RedisCache)(nil)
