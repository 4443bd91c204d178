package cache

import "time"

// EvictReason explains why an entry was removed from a cache layer.
type EvictReason int

const (
	// EvictPolicy — removed by the active eviction policy (LRU/2Q).
	EvictPolicy EvictReason = iota
	// EvictTTL — expired by absolute TTL (lazy eviction on access).
	EvictTTL
	// EvictTTI — expired by idle timeout since last access.
	EvictTTI
	// EvictCapacity — removed to satisfy capacity limits.
	EvictCapacity
)

// Metrics exposes observability hooks common to every cache layer in this
// package. A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, cost int64)

	// Coalesce records that a GetOrCompute call joined an in-flight fetch
	// instead of invoking its own FetchFunc.
	Coalesce()
	// Backfill records a layered cache populating L1 from an L2 hit.
	Backfill()
	// BloomShortCircuit records a Bloom-filter decorator returning a miss
	// without querying the wrapped cache.
	BloomShortCircuit()
}

// NoopMetrics is a Metrics implementation that does nothing. It is the
// default when no Metrics is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                  {}
func (NoopMetrics) Miss()                 {}
func (NoopMetrics) Evict(EvictReason)     {}
func (NoopMetrics) Size(int, int64)       {}
func (NoopMetrics) Coalesce()             {}
func (NoopMetrics) Backfill()             {}
func (NoopMetrics) BloomShortCircuit()    {}

// Clock provides the current time; Tests substitute a fake clock for
// deterministic TTL/TTI behavior.
type Clock interface{ Now() time.Time }

// systemClock is the default Clock, backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
