package cache

import (
	"sync"
	"time"

	"github.com/wormhole-url/wormhole/internal/util"
	"github.com/wormhole-url/wormhole/policy"
	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// shard is an independent partition of the in-memory cache with its own
// lock, map, and intrusive doubly linked list (head=MRU, tail=LRU).
type shard struct {
	// ---- guarded by mu ----
	mu   sync.RWMutex
	m    map[shortcode.ShortCode]*node
	head *node // MRU
	tail *node // LRU
	len  int   // number of resident entries
	cap  int   // per-shard entry capacity

	pol    policy.ShardPolicy[shortcode.ShortCode, *wormhole.UrlRecord]
	ttl    time.Duration
	tti    time.Duration
	clock  Clock
	metric Metrics

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

func newShard(capacity int, pol policy.Policy[shortcode.ShortCode, *wormhole.UrlRecord], ttl, tti time.Duration, clock Clock, metric Metrics) *shard {
	s := &shard{
		m:      make(map[shortcode.ShortCode]*node, capacity),
		cap:    capacity,
		ttl:    ttl,
		tti:    tti,
		clock:  clock,
		metric: metric,
	}
	s.pol = pol.New(shardHooks{s: s})
	return s
}

// Set inserts or updates an entry and promotes it according to the policy.
func (s *shard) Set(k shortcode.ShortCode, v *wormhole.UrlRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var exp, idle int64
	if s.ttl > 0 {
		exp = now + s.ttl.Nanoseconds()
	}
	var ttiNanos int64
	if s.tti > 0 {
		ttiNanos = s.tti.Nanoseconds()
		idle = now + ttiNanos
	}

	if n, ok := s.m[k]; ok {
		n.val = v
		n.exp = exp
		n.idle = idle
		n.tti = ttiNanos
		s.pol.OnUpdate(n)
		s.enforceLimitsLocked()
		return
	}

	n := &node{key: k, val: v, exp: exp, idle: idle, tti: ttiNanos}
	s.m[k] = n
	if ev := s.pol.OnAdd(n); ev != nil {
		s.evictNode(ev.(*node), EvictPolicy)
	}
	s.enforceLimitsLocked()
}

// Get returns the value and promotes the entry according to the policy.
// An expired entry (TTL or TTI) is evicted lazily and reported as a miss.
func (s *shard) Get(k shortcode.ShortCode) (*wormhole.UrlRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		s.misses.Add(1)
		s.metric.Miss()
		return nil, false
	}
	if reason, expired := s.expiredLocked(n); expired {
		s.evictNode(n, reason)
		s.misses.Add(1)
		s.metric.Miss()
		return nil, false
	}

	if n.tti > 0 {
		n.idle = s.now() + n.tti
	}
	s.pol.OnGet(n)
	s.hits.Add(1)
	s.metric.Hit()
	return n.val, true
}

// Remove deletes an entry by key. Returns true if the entry existed.
func (s *shard) Remove(k shortcode.ShortCode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		return false
	}
	s.pol.OnRemove(n)
	s.removeNode(n)
	delete(s.m, k)
	return true
}

// Len returns the number of resident entries in this shard.
func (s *shard) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.len
}

// -------------------- internals (mu held) --------------------

func (s *shard) expiredLocked(n *node) (EvictReason, bool) {
	now := s.now()
	if n.exp != 0 && now > n.exp {
		return EvictTTL, true
	}
	if n.idle != 0 && now > n.idle {
		return EvictTTI, true
	}
	return 0, false
}

func (s *shard) now() int64 {
	if s.clock != nil {
		return s.clock.Now().UnixNano()
	}
	return time.Now().UnixNano()
}

func (s *shard) insertFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
}

func (s *shard) moveToFront(n *node) {
	if n == s.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *shard) removeNode(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
}

func (s *shard) back() *node { return s.tail }

func (s *shard) evictNode(n *node, reason EvictReason) {
	s.pol.OnRemove(n)
	s.removeNode(n)
	delete(s.m, n.key)
	s.evicts.Add(1)
	s.metric.Evict(reason)
}

func (s *shard) enforceLimitsLocked() {
	for s.len > s.cap {
		if tail := s.back(); tail != nil {
			s.evictNode(tail, EvictCapacity)
		} else {
			break
		}
	}
	s.metric.Size(s.len, int64(s.len))
}

// -------------------- policy hooks --------------------

type shardHooks struct{ s *shard }

func (h shardHooks) MoveToFront(x policy.Node[shortcode.ShortCode, *wormhole.UrlRecord]) {
	h.s.moveToFront(x.(*node))
}
func (h shardHooks) PushFront(x policy.Node[shortcode.ShortCode, *wormhole.UrlRecord]) {
	h.s.insertFront(x.(*node))
}
func (h shardHooks) Remove(x policy.Node[shortcode.ShortCode, *wormhole.UrlRecord]) {
	h.s.removeNode(x.(*node))
}
func (h shardHooks) Back() policy.Node[shortcode.ShortCode, *wormhole.UrlRecord] {
	if h.s.tail == nil {
		return nil
	}
	return h.s.tail
}
func (h shardHooks) Len() int { return h.s.len }
