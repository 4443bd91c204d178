package shortcode

import (
	"strings"
	"testing"

	"github.com/wormhole-url/wormhole/tinyflake"
)

// S7 — ShortCode validation.
func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New("ab"); err == nil {
		t.Fatal("expected InvalidLength for \"ab\"")
	}
	if _, err := New("abc def"); err == nil {
		t.Fatal("expected InvalidCharacters for \"abc def\"")
	}
	code, err := New("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if code.AsStr() != "abc123" {
		t.Fatalf("want abc123, got %s", code.AsStr())
	}
	if _, err := New(strings.Repeat("a", 33)); err == nil {
		t.Fatal("expected InvalidLength for 33-char string")
	}
}

// P4 — for all valid short-code strings, New(s).AsStr() == s.
func TestNew_RoundTripsString(t *testing.T) {
	t.Parallel()

	inputs := []string{"abc", "Abc-123_xyz", strings.Repeat("a", 32), "a-b_c"}
	for _, s := range inputs {
		code, err := New(s)
		if err != nil {
			t.Fatalf("New(%q): %v", s, err)
		}
		if code.AsStr() != s {
			t.Fatalf("want %q, got %q", s, code.AsStr())
		}
	}
}

func TestValidate_Idempotent(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"abc", "ab", "abc def", strings.Repeat("x", 40)} {
		err1 := Validate(s)
		err2 := Validate(s)
		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("Validate(%q) not idempotent", s)
		}
	}
}

func TestGenerated_EncodesBase58(t *testing.T) {
	t.Parallel()
	code := Generated([tinyflake.Size]byte{0x10, 0x20, 0x30, 0x40, 0x50})
	if !code.IsGenerated() {
		t.Fatal("expected generated variant")
	}
	if len(code.AsStr()) < 5 || len(code.AsStr()) > 9 {
		t.Fatalf("base58 of 5 bytes should be 5..9 chars, got %d (%q)", len(code.AsStr()), code.AsStr())
	}
}

func TestFromProto_RejectsMalformed(t *testing.T) {
	t.Parallel()

	if _, err := FromProto(WireKindGenerated, "not-valid-base58!@#"); err == nil {
		t.Fatal("expected malformed error for invalid base58")
	}
	if _, err := FromProto(WireKindCustom, "x"); err == nil {
		t.Fatal("expected malformed error for too-short custom code")
	}
	if _, err := FromProto(2, "abc"); err == nil {
		t.Fatal("expected InvalidKindError for unknown discriminator")
	}
}

func TestFromProto_RoundTrip(t *testing.T) {
	t.Parallel()

	generated := Generated([tinyflake.Size]byte{1, 2, 3, 4, 5})
	kind, value := generated.ToProto()
	decoded, err := FromProto(kind, value)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.AsStr() != generated.AsStr() {
		t.Fatalf("round trip mismatch: %q vs %q", decoded.AsStr(), generated.AsStr())
	}

	custom, err := New("my-code")
	if err != nil {
		t.Fatal(err)
	}
	kind, value = custom.ToProto()
	decoded, err = FromProto(kind, value)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.AsStr() != custom.AsStr() {
		t.Fatalf("round trip mismatch: %q vs %q", decoded.AsStr(), custom.AsStr())
	}
}

func FuzzValidate(f *testing.F) {
	f.Add("abc")
	f.Add("ab")
	f.Add("abc def")
	f.Fuzz(func(t *testing.T, s string) {
		if len(s) > 1<<12 {
			s = s[:1<<12]
		}
		err := Validate(s)
		ok := err == nil
		want := len(s) >= minCustomLength && len(s) <= maxCustomLength && allASCIIAllowed(s)
		if ok != want {
			t.Fatalf("Validate(%q) = %v, want valid=%v", s, err, want)
		}
	})
}

func allASCIIAllowed(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isAllowed(s[i]) {
			return false
		}
	}
	return true
}
