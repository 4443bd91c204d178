// Package wormhole holds the data model shared across the cache and
// repository packages: the UrlRecord stored behind every short code.
package wormhole

import (
	"encoding/json"
	"time"
)

// UrlRecord is the record kept behind a short code. It is treated as opaque
// by the cache substrate; only the repository and service layers interpret
// its fields. Records are immutable within a cache entry's lifetime:
// replacement happens only via an explicit Set.
type UrlRecord struct {
	OriginalURL string     `json:"original_url"`
	ExpireAt    *time.Time `json:"expire_at,omitempty"`
}

// Marshal encodes the record into its self-describing text form (JSON),
// used by every remote cache implementation as the wire value.
func (r UrlRecord) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes a record previously produced by Marshal. Round-trip is
// lossless: Unmarshal(Marshal(r)) == r for any r.
func Unmarshal(data []byte) (UrlRecord, error) {
	var r UrlRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return UrlRecord{}, err
	}
	return r, nil
}
