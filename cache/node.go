package cache

import (
	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// node is an intrusive doubly linked list element owned by a shard. It
// pairs a short code with its record and the bookkeeping an eviction
// policy and TTL/TTI accounting need.
//
// The underlying shard/policy machinery is generic in the teacher this
// package is adapted from; here it is monomorphized at the one key/value
// pair the cache substrate needs (shortcode.ShortCode -> *wormhole.UrlRecord)
// since the domain never requires a second instantiation.
type node struct {
	key shortcode.ShortCode
	val *wormhole.UrlRecord

	// Intrusive list links: head is MRU, tail is LRU.
	prev *node
	next *node

	// Absolute expiration deadline in UnixNano. Zero means "no TTL".
	exp int64

	// Absolute idle deadline in UnixNano, refreshed on every access.
	// Zero means "no TTI".
	idle int64
	tti  int64 // configured idle duration in nanoseconds; 0 disables TTI
}

// Key returns the node key (part of policy.Node interface).
func (n *node) Key() shortcode.ShortCode { return n.key }

// Value returns a pointer to the stored value (part of policy.Node interface).
// Callers must only read/write through this pointer while holding the
// shard lock.
func (n *node) Value() **wormhole.UrlRecord { return &n.val }
