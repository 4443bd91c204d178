// Package tinyflake implements the compact 40-bit identifier used to mint
// short codes: a Sonyflake-style layout of {timestamp:30, sequence:8, node:2}
// packed big-endian into 5 bytes, plus the monotonic generator that produces
// a stream of them.
package tinyflake

import "fmt"

const (
	// MaxTimestamp is the largest value the 30-bit timestamp field can hold.
	MaxTimestamp = 1<<30 - 1
	// MaxSequence is the largest value the 8-bit sequence field can hold.
	MaxSequence = 1<<8 - 1
	// MaxNode is the largest value the 2-bit node field can hold.
	MaxNode = 1<<2 - 1
)

// Size is the byte length of a packed ID.
const Size = 5

// ID is a parsed {timestamp, sequence, node} triple. It carries no behavior
// beyond the fields themselves; Pack/Unpack are the only way to cross the
// byte-array boundary.
type ID struct {
	Timestamp uint32 // 30 bits: whole seconds since a configured epoch
	Sequence  uint8  // 8 bits: per-second counter
	Node      uint8  // 2 bits: deployment-unique index, 0..=3
}

// FieldOverflowError reports that a field value exceeds its bit width.
type FieldOverflowError struct {
	Field string
	Value uint64
	Max   uint64
}

func (e *FieldOverflowError) Error() string {
	return fmt.Sprintf("tinyflake: field %s value %d exceeds max %d", e.Field, e.Value, e.Max)
}

// Pack bit-packs {t:30, s:8, n:2} into 5 big-endian bytes. Bit 0 (the MSB of
// byte 0) is the MSB of t; bits 30..=37 hold s; bits 38..=39 hold n. Inputs
// outside their field width are rejected.
func Pack(t uint32, s uint8, n uint8) ([Size]byte, error) {
	var out [Size]byte
	if t > MaxTimestamp {
		return out, &FieldOverflowError{Field: "timestamp", Value: uint64(t), Max: MaxTimestamp}
	}
	if n > MaxNode {
		return out, &FieldOverflowError{Field: "node", Value: uint64(n), Max: MaxNode}
	}
	// s is already constrained to [0,255] by its uint8 type (MaxSequence).

	// Compose the 40-bit value: t occupies bits 39..10, s occupies bits 9..2,
	// n occupies bits 1..0 (counting from the LSB of a 40-bit integer).
	v := (uint64(t) << 10) | (uint64(s) << 2) | uint64(n)
	out[0] = byte(v >> 32)
	out[1] = byte(v >> 24)
	out[2] = byte(v >> 16)
	out[3] = byte(v >> 8)
	out[4] = byte(v)
	return out, nil
}

// Unpack reverses Pack, extracting {t, s, n} from a 5-byte big-endian payload.
func Unpack(raw [Size]byte) (t uint32, s uint8, n uint8) {
	v := uint64(raw[0])<<32 | uint64(raw[1])<<24 | uint64(raw[2])<<16 | uint64(raw[3])<<8 | uint64(raw[4])
	t = uint32(v >> 10 & MaxTimestamp)
	s = uint8(v >> 2 & MaxSequence)
	n = uint8(v & MaxNode)
	return t, s, n
}

// Pack encodes the ID into its 5-byte wire form.
func (id ID) Pack() ([Size]byte, error) {
	return Pack(id.Timestamp, id.Sequence, id.Node)
}

// UnpackID parses a 5-byte wire form into an ID.
func UnpackID(raw [Size]byte) ID {
	t, s, n := Unpack(raw)
	return ID{Timestamp: t, Sequence: s, Node: n}
}
