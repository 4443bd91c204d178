// Package obfuscate implements a deterministic, invertible scramble over the
// 40-bit tinyflake identifier space. It is not cryptography: it exists only
// to spread sequentially-issued identifiers across the base58 output space so
// creation order isn't visible from the short code alone.
package obfuscate

import "github.com/wormhole-url/wormhole/tinyflake"

// lower40BitsMask masks a uint64 down to its low 40 bits.
const lower40BitsMask = 1<<40 - 1

// DefaultPrime and DefaultMask match the reference obfuscator configuration.
const (
	DefaultPrime uint64 = 3
	DefaultMask  uint64 = 0xDEAD_BEEF_CAFE_BABE
)

// Obfuscator applies obfuscate(x) = ((x * Prime) XOR Mask) mod 2^40 and its
// inverse. Prime must be odd so it has a multiplicative inverse mod 2^40.
type Obfuscator struct {
	Prime uint64
	Mask  uint64
}

// New constructs an Obfuscator with the default prime and mask.
func New() Obfuscator {
	return Obfuscator{Prime: DefaultPrime, Mask: DefaultMask}
}

// Obfuscate scrambles a tinyflake ID, returning the obfuscated 5-byte value.
func (o Obfuscator) Obfuscate(id tinyflake.ID) ([tinyflake.Size]byte, error) {
	raw, err := id.Pack()
	if err != nil {
		return raw, err
	}
	source := bytesToU40(raw)
	obfuscated := (source * o.Prime) ^ o.Mask
	obfuscated &= lower40BitsMask
	return u40ToBytes(obfuscated), nil
}

// Invert reverses Obfuscate, recovering the original tinyflake ID.
func (o Obfuscator) Invert(obfuscated [tinyflake.Size]byte) tinyflake.ID {
	value := bytesToU40(obfuscated)
	source := ((value ^ o.Mask) & lower40BitsMask) * modInverseMod2pow40(o.Prime)
	source &= lower40BitsMask
	return tinyflake.UnpackID(u40ToBytes(source))
}

func bytesToU40(raw [tinyflake.Size]byte) uint64 {
	return uint64(raw[0])<<32 | uint64(raw[1])<<24 | uint64(raw[2])<<16 | uint64(raw[3])<<8 | uint64(raw[4])
}

func u40ToBytes(v uint64) [tinyflake.Size]byte {
	v &= lower40BitsMask
	return [tinyflake.Size]byte{
		byte(v >> 32), byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}

// modInverseMod2pow40 computes the multiplicative inverse of an odd prime
// modulo 2^40 via the extended Euclidean algorithm. It exists because every
// odd number is a unit in the ring Z/2^40Z.
func modInverseMod2pow40(prime uint64) uint64 {
	const modulus = uint64(1) << 40
	var (
		oldR, r = prime & (modulus - 1), modulus
		oldS, s = int64(1), int64(0)
	)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-int64(q)*s
	}
	// oldR is gcd(prime, modulus); callers are expected to pass an odd prime
	// so gcd == 1.
	result := oldS
	mod := int64(modulus)
	result %= mod
	if result < 0 {
		result += mod
	}
	return uint64(result)
}
