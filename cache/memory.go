package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/wormhole-url/wormhole/internal/singleflight"
	"github.com/wormhole-url/wormhole/internal/util"
	"github.com/wormhole-url/wormhole/policy"
	"github.com/wormhole-url/wormhole/policy/lru"
	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// MemoryCacheOptions configures a MemoryCache. Zero values are safe;
// NewMemoryCache applies sane defaults:
//   - nil Policy  => LRU
//   - Shards <= 0 => auto (rounded up to a power of two)
//   - nil Metrics => NoopMetrics
type MemoryCacheOptions struct {
	// Capacity is the total entry count limit across all shards.
	Capacity int

	// Shards defines the number of shards. If 0, an automatic value is
	// chosen (~2*GOMAXPROCS) and rounded to the next power of two.
	Shards int

	// Policy is a pluggable eviction policy (LRU/2Q); nil => LRU.
	Policy policy.Policy[shortcode.ShortCode, *wormhole.UrlRecord]

	// TTL bounds how long an entry may live since insertion. Zero disables
	// absolute expiration.
	TTL time.Duration

	// TTI bounds how long an entry may live since its last access. Zero
	// disables idle expiration.
	TTI time.Duration

	Metrics Metrics
	Clock   Clock
}

// MemoryCache is a sharded, in-process UrlCache with TTL/TTI expiration and
// single-flight coalescing on GetOrCompute (I7). It is the L1 layer of a
// typical deployment (C9's LayeredCache) and can be used standalone.
type MemoryCache struct {
	shards []*shard
	mask   uint64
	sf     singleflight.Group[shortcode.ShortCode, *wormhole.UrlRecord]
	metric Metrics
}

// NewMemoryCache constructs a MemoryCache from opt.
func NewMemoryCache(opt MemoryCacheOptions) *MemoryCache {
	shardCount := opt.Shards
	if shardCount <= 0 {
		shardCount = util.ReasonableShardCount()
	}
	shardCount = int(util.NextPow2(uint64(shardCount)))

	pol := opt.Policy
	if pol == nil {
		pol = lru.New[shortcode.ShortCode, *wormhole.UrlRecord]()
	}
	metric := opt.Metrics
	if metric == nil {
		metric = NoopMetrics{}
	}

	perShardCap := opt.Capacity / shardCount
	if perShardCap < 1 {
		perShardCap = 1
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = newShard(perShardCap, pol, opt.TTL, opt.TTI, opt.Clock, metric)
	}

	return &MemoryCache{
		shards: shards,
		mask:   uint64(shardCount - 1),
		metric: metric,
	}
}

func (m *MemoryCache) shardFor(code shortcode.ShortCode) *shard {
	h := util.Fnv64a(code)
	return m.shards[h&m.mask]
}

// Get returns the cached record for code, or (nil, nil) on a miss.
func (m *MemoryCache) Get(_ context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error) {
	v, ok := m.shardFor(code).Get(code)
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Set stores record under code, promoting it to MRU.
func (m *MemoryCache) Set(_ context.Context, code shortcode.ShortCode, record *wormhole.UrlRecord) error {
	m.shardFor(code).Set(code, record)
	return nil
}

// Del removes code if present (I6: absence is not an error).
func (m *MemoryCache) Del(_ context.Context, code shortcode.ShortCode) error {
	m.shardFor(code).Remove(code)
	return nil
}

// GetOrCompute returns the cached record for code, coalescing concurrent
// misses for the same code into a single call to fetch (I7).
func (m *MemoryCache) GetOrCompute(ctx context.Context, code shortcode.ShortCode, fetch FetchFunc) (*wormhole.UrlRecord, error) {
	if record, err := m.Get(ctx, code); err != nil {
		return nil, err
	} else if record != nil {
		return record, nil
	}

	var ran int32
	record, err := m.sf.Do(ctx, code, func() (*wormhole.UrlRecord, error) {
		atomic.StoreInt32(&ran, 1)
		record, err := fetch(ctx, code)
		if err != nil {
			return nil, err
		}
		if record != nil {
			m.shardFor(code).Set(code, record)
		}
		return record, nil
	})
	if atomic.LoadInt32(&ran) == 0 {
		m.metric.Coalesce()
	}
	return record, err
}

// Len returns the total number of resident entries across all shards.
func (m *MemoryCache) Len() int {
	n := 0
	for _, s := range m.shards {
		n += s.Len()
	}
	return n
}

var _ UrlCache = (*MemoryCache)(nil)
