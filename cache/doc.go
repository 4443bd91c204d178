// Package cache implements the read-path cache substrate: a UrlCache
// contract over shortcode.ShortCode -> *wormhole.UrlRecord, with five
// concrete layers that can be composed freely:
//
//   - MemoryCache: sharded, in-process, TTL/TTI expiration, single-flight.
//   - RedisCache: single-node remote cache.
//   - HACache: Sentinel-backed master/replica remote cache.
//   - LayeredCache: any two UrlCaches composed as L1/L2.
//   - BloomCache: a Bloom-filter accelerator in front of any UrlCache.
package cache
