package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// HACacheOptions configures a HACache.
type HACacheOptions struct {
	// SentinelAddrs is the list of sentinel addresses (e.g.
	// "sentinel-0:26379").
	SentinelAddrs []string

	// MasterName is the Sentinel service/master-group name to resolve.
	MasterName string

	// KeyPrefix namespaces every key; defaults to "wh:url:".
	KeyPrefix string

	// TTL applies to every Set call (Q2).
	TTL time.Duration
}

// HACache is a highly available remote UrlCache backed by a Redis deployment
// behind Sentinel: writes go to the elected master, reads go to a replica,
// and Sentinel's quorum protocol handles failover transparently to the
// go-redis client. It models the spec's "external quorum service" using a
// production-real instance of one rather than a bespoke discovery protocol.
type HACache struct {
	writeClient *redis.Client // routes to master
	readClient  *redis.Client // routes to a replica
	prefix      string
	ttl         time.Duration
}

// NewHACache constructs a HACache from Sentinel configuration.
func NewHACache(opt HACacheOptions) *HACache {
	prefix := opt.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	writeClient := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:    opt.MasterName,
		SentinelAddrs: opt.SentinelAddrs,
	})
	readClient := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:    opt.MasterName,
		SentinelAddrs: opt.SentinelAddrs,
		RouteByLatency: true,
		ReplicaOnly:    true,
	})
	return &HACache{writeClient: writeClient, readClient: readClient, prefix: prefix, ttl: opt.TTL}
}

func (c *HACache) key(code shortcode.ShortCode) string {
	return c.prefix + code.AsStr()
}

// Get reads from a replica.
func (c *HACache) Get(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	data, err := c.readClient.Get(ctx, c.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, mapRedisErr("get", err, KindUnavailable)
	}
	record, err := wormhole.Unmarshal(data)
	if err != nil {
		return nil, newErr(KindInvalidData, "get", err)
	}
	return &record, nil
}

// Set writes to the master.
func (c *HACache) Set(ctx context.Context, code shortcode.ShortCode, record *wormhole.UrlRecord) error {
	data, err := record.Marshal()
	if err != nil {
		return newErr(KindSerialization, "set", err)
	}
	if err := c.writeClient.Set(ctx, c.key(code), data, c.ttl).Err(); err != nil {
		return mapRedisErr("set", err, KindUnavailable)
	}
	return nil
}

// Del removes code via the master.
func (c *HACache) Del(ctx context.Context, code shortcode.ShortCode) error {
	if err := c.writeClient.Del(ctx, c.key(code)).Err(); err != nil {
		return mapRedisErr("del", err, KindUnavailable)
	}
	return nil
}

// GetOrCompute delegates to DefaultGetOrCompute.
func (c *HACache) GetOrCompute(ctx context.Context, code shortcode.ShortCode, fetch FetchFunc) (*wormhole.UrlRecord, error) {
	return DefaultGetOrCompute(ctx, c, code, fetch)
}

// Close releases both underlying client pools.
func (c *HACache) Close() error {
	err1 := c.writeClient.Close()
	err2 := c.readClient.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

var _ UrlCache = (*HACache)(nil)
