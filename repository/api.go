// Package repository defines the durable record-store contract (C11) and
// a cache-aware read-through decorator over it.
package repository

import (
	"context"

	"github.com/wormhole-url/wormhole/shortcode"
	"github.com/wormhole-url/wormhole/wormhole"
)

// ReadStore is a read-only view of a record store.
type ReadStore interface {
	// Get returns the record for code, or (nil, nil) if code does not exist.
	Get(ctx context.Context, code shortcode.ShortCode) (*wormhole.UrlRecord, error)

	// Exists reports whether code is present.
	Exists(ctx context.Context, code shortcode.ShortCode) (bool, error)
}

// Store extends ReadStore with the mutations the writer path needs.
type Store interface {
	ReadStore

	// Insert adds a new record under code. Returns a Conflict error if
	// code already exists.
	Insert(ctx context.Context, code shortcode.ShortCode, record wormhole.UrlRecord) error

	// Delete removes the record for code. Returns whether it existed.
	Delete(ctx context.Context, code shortcode.ShortCode) (bool, error)
}
