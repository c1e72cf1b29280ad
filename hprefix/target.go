// Package hprefix parses and matches digest bit prefixes.
//
// A target prefix is written as a string of hex digits.
// Each digit contributes four bits, so an odd-length string
// ends on a half-byte boundary and only the high nibble of
// the final stored byte participates in matching.
package hprefix

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Target is an immutable bit prefix that digests are matched against.
//
// The zero value has a bit length of zero and matches nothing useful;
// construct targets with [Parse].
type Target struct {
	bits   []byte
	bitLen int
}

// Parse interprets s as hex digits and returns the corresponding Target.
// An odd number of digits is allowed: the final digit covers only the
// high nibble of its byte.
func Parse(s string) (Target, error) {
	if s == "" {
		return Target{}, fmt.Errorf("target prefix must contain at least one hex digit")
	}

	padded := s
	if len(s)%2 == 1 {
		// Zero-pad to a whole byte.
		// The padding nibble is excluded from matching by the bit length.
		padded += "0"
	}

	b, err := hex.DecodeString(padded)
	if err != nil {
		return Target{}, fmt.Errorf("invalid target prefix %q: %w", s, err)
	}

	return Target{bits: b, bitLen: 4 * len(s)}, nil
}

// BitLen returns the number of significant bits in the target.
func (t Target) BitLen() int {
	return t.bitLen
}

// String returns the target as hex digits,
// trimmed to its significant nibbles.
func (t Target) String() string {
	s := hex.EncodeToString(t.bits)
	if t.bitLen%8 != 0 {
		s = s[:len(s)-1]
	}
	return s
}

// Match reports whether digest begins with the target's bits.
//
// Whole target bytes are compared directly. A trailing partial byte
// is always exactly one nibble, because targets are built from hex
// digits, so only the high nibble of the final byte is compared and
// the digest's low nibble there is ignored.
func (t Target) Match(digest []byte) bool {
	if t.bitLen == 0 || len(digest) < (t.bitLen+7)/8 {
		return false
	}

	full := t.bitLen / 8
	if !bytes.Equal(digest[:full], t.bits[:full]) {
		return false
	}
	if t.bitLen%8 == 0 {
		return true
	}

	return digest[full]&0xf0 == t.bits[full]&0xf0
}
