package shortcode

import (
	"github.com/mr-tron/base58"

	"github.com/wormhole-url/wormhole/tinyflake"
)

// Wire discriminator values used by the external proto representation
// consumed by the gateway/shortener services. Matches spec.md section 4.4's
// "kind discriminator" over the wire.
const (
	WireKindGenerated uint8 = 0
	WireKindCustom    uint8 = 1
)

// FromProto converts the external proto representation (a kind
// discriminator plus the raw string value) into a ShortCode. It always
// validates: malformed base58 for a generated code or an invalid custom
// string both fail with a MalformedError rather than being accepted
// unchecked from an untrusted boundary (resolves Open Question Q3).
func FromProto(kind uint8, value string) (ShortCode, error) {
	switch kind {
	case WireKindGenerated:
		raw, err := base58.Decode(value)
		if err != nil {
			return ShortCode{}, &MalformedError{Kind: "generated", Reason: err}
		}
		if len(raw) != tinyflake.Size {
			return ShortCode{}, &MalformedError{Kind: "generated", Reason: &FieldLengthError{Got: len(raw), Want: tinyflake.Size}}
		}
		return ShortCode{kind: kindGenerated, text: value}, nil
	case WireKindCustom:
		code, err := New(value)
		if err != nil {
			return ShortCode{}, &MalformedError{Kind: "custom", Reason: err}
		}
		return code, nil
	default:
		return ShortCode{}, &InvalidKindError{Kind: kind}
	}
}

// ToProto returns the wire discriminator and canonical text for c.
func (c ShortCode) ToProto() (kind uint8, value string) {
	if c.IsGenerated() {
		return WireKindGenerated, c.text
	}
	return WireKindCustom, c.text
}

// FieldLengthError reports a decoded byte payload of the wrong length.
type FieldLengthError struct {
	Got, Want int
}

func (e *FieldLengthError) Error() string {
	return "shortcode: decoded payload has wrong length"
}
