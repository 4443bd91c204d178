package obfuscate

import (
	"testing"

	"github.com/wormhole-url/wormhole/tinyflake"
)

// P3 — for all x in [0, 2^40) and any odd prime/mask, inverse(obfuscate(x)) == x.
func TestObfuscator_RoundTrip(t *testing.T) {
	t.Parallel()

	ids := []tinyflake.ID{
		{Timestamp: 0, Sequence: 0, Node: 0},
		{Timestamp: tinyflake.MaxTimestamp, Sequence: tinyflake.MaxSequence, Node: tinyflake.MaxNode},
		{Timestamp: 12345, Sequence: 7, Node: 2},
		{Timestamp: 1, Sequence: 0, Node: 3},
	}

	for _, primeMask := range []Obfuscator{
		New(),
		{Prime: 5, Mask: 0x1234_5678_9ABC},
		{Prime: 7, Mask: 0},
		{Prime: 0xFFFF_FFFF_FFFF_FFFF, Mask: 0xABCD},
	} {
		for _, id := range ids {
			obfuscated, err := primeMask.Obfuscate(id)
			if err != nil {
				t.Fatalf("Obfuscate(%+v): %v", id, err)
			}
			recovered := primeMask.Invert(obfuscated)
			if recovered != id {
				t.Fatalf("round-trip mismatch for %+v: got %+v (prime=%d mask=%x)",
					id, recovered, primeMask.Prime, primeMask.Mask)
			}
		}
	}
}

func TestObfuscator_SpreadsSequentialIDs(t *testing.T) {
	t.Parallel()

	o := New()
	a, err := o.Obfuscate(tinyflake.ID{Timestamp: 100, Sequence: 0, Node: 0})
	if err != nil {
		t.Fatal(err)
	}
	b, err := o.Obfuscate(tinyflake.ID{Timestamp: 100, Sequence: 1, Node: 0})
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("sequential ids should obfuscate to distinct values")
	}
}

func FuzzObfuscator_RoundTrip(f *testing.F) {
	f.Add(uint32(100), uint8(5), uint8(2))
	o := New()
	f.Fuzz(func(t *testing.T, ts uint32, seq uint8, node uint8) {
		ts &= tinyflake.MaxTimestamp
		node &= tinyflake.MaxNode
		id := tinyflake.ID{Timestamp: ts, Sequence: seq, Node: node}
		obfuscated, err := o.Obfuscate(id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := o.Invert(obfuscated); got != id {
			t.Fatalf("round-trip mismatch: want %+v got %+v", id, got)
		}
	})
}
