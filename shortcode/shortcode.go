// Package shortcode implements the tagged ShortCode identifier: either a
// base58-encoded generated code or a validated custom alias.
package shortcode

import (
	"github.com/mr-tron/base58"

	"github.com/wormhole-url/wormhole/tinyflake"
)

const (
	minCustomLength = 3
	maxCustomLength = 32
)

type kind uint8

const (
	kindGenerated kind = iota
	kindCustom
)

// ShortCode is a sum of two variants: a base58-encoded generated code, or a
// validated custom alias. Both variants store their canonical text
// directly. Equality with == (and use as a map key) compares the variant as
// well as the text, so a generated and a custom code with the same text are
// not equal; compare AsStr() to match on text alone.
type ShortCode struct {
	kind kind
	text string
}

// Generated encodes a 5-byte identifier (typically post-obfuscation) as a
// base58 ShortCode.
func Generated(raw [tinyflake.Size]byte) ShortCode {
	return ShortCode{kind: kindGenerated, text: base58.Encode(raw[:])}
}

// New validates s and, on success, returns a Custom ShortCode.
func New(s string) (ShortCode, error) {
	if err := Validate(s); err != nil {
		return ShortCode{}, err
	}
	return ShortCode{kind: kindCustom, text: s}, nil
}

// NewUnchecked constructs a Custom ShortCode without validation. Use only
// for codes produced by trusted internal sources.
func NewUnchecked(s string) ShortCode {
	return ShortCode{kind: kindCustom, text: s}
}

// AsStr returns the canonical textual form of the code.
func (c ShortCode) AsStr() string { return c.text }

// String implements fmt.Stringer; it is identical to AsStr.
func (c ShortCode) String() string { return c.text }

// IsGenerated reports whether c was produced by Generated rather than New/NewUnchecked.
func (c ShortCode) IsGenerated() bool { return c.kind == kindGenerated }

// Validate reports whether s is a legal ShortCode body: length in [3,32]
// and composed only of ASCII letters, digits, '_' and '-'. Validation is
// total and idempotent (I3).
func Validate(s string) error {
	if len(s) < minCustomLength || len(s) > maxCustomLength {
		return &InvalidLengthError{Length: len(s), Min: minCustomLength, Max: maxCustomLength}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isAllowed(c) {
			return &InvalidCharactersError{Value: s}
		}
	}
	return nil
}

func isAllowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	default:
		return false
	}
}
