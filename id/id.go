// Package id implements the 128-bit identifiers used to place both
// ring peers and stored content on the Chord-style ring. It replaces
// the decimal-string arithmetic of the system this module is modeled
// on with a fixed-size byte array compared directly, the way
// key/sha256key compares its 32-byte content hashes in the upstream
// storage layer this module borrows its shape from.
package id

import (
	"crypto/sha1"
	"encoding/base32"
	"math/big"
	"strings"

	"chordfs.io/errors"
)

// Len is the width of an identifier in bytes (128 bits).
const Len = 16

// ID is a 128-bit ring identifier. The byte at index 0 is the
// least-significant byte: the same little-endian interpretation the
// reference implementation used when folding a SHA-1 digest down to
// 128 bits and summing it into an integer key.
type ID [Len]byte

// Zero is the identifier with every bit unset.
var Zero ID

// Sum returns the identifier derived from data: the first Len bytes
// of its SHA-1 digest. If data already has exactly Len bytes, it is
// used verbatim (the reference DHT client skips hashing 16-byte
// inputs, treating them as already-derived identifiers).
func Sum(data []byte) ID {
	if len(data) == Len {
		var out ID
		copy(out[:], data)
		return out
	}
	sum := sha1.Sum(data)
	var out ID
	copy(out[:], sum[:Len])
	return out
}

// Cmp compares a and b as 128-bit little-endian integers, returning
// -1, 0, or 1. Comparison walks from the most-significant byte (the
// last one) down, so no big integer conversion is needed on the
// routing hot path.
func (a ID) Cmp(b ID) int {
	for i := Len - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Less reports whether a sorts before b.
func (a ID) Less(b ID) bool { return a.Cmp(b) < 0 }

// Equal reports whether a and b are the same identifier.
func (a ID) Equal(b ID) bool { return a == b }

// Between reports whether id falls in the ring interval (lo, hi],
// measured going clockwise from lo to hi. When lo == hi the interval
// is the entire ring (used when a node is its own successor). A ring
// node's Manage builds its [self, next) ownership test on top of it.
func (x ID) Between(lo, hi ID) bool {
	if lo == hi {
		return true
	}
	if lo.Less(hi) {
		return lo.Less(x) && !hi.Less(x)
	}
	// The interval wraps past the maximum identifier.
	return lo.Less(x) || !hi.Less(x)
}

// String renders the identifier as an unsigned decimal number, the
// form exchanged on the wire by the ring's RPC methods (join_msg,
// who_msg, msg, id_msg all carry identifiers as decimal strings;
// only in-process comparisons use the fixed-array form).
func (x ID) String() string {
	return new(big.Int).SetBytes(reverse(x[:])).String()
}

// Parse decodes a decimal string, as produced by String, back into an
// ID. It reports an Invalid-kind error for malformed input.
func Parse(s string) (ID, error) {
	const op = "id.Parse"
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return Zero, errors.E(op, errors.Invalid, errors.Errorf("not a decimal identifier: %q", s))
	}
	b := n.Bytes() // big-endian, shortest form
	if len(b) > Len {
		return Zero, errors.E(op, errors.Invalid, errors.Errorf("identifier out of range: %q", s))
	}
	var out ID
	// b is big-endian; place it at the low end then reverse into
	// little-endian storage.
	var be [Len]byte
	copy(be[Len-len(b):], b)
	copy(out[:], reverse(be[:]))
	return out, nil
}

// base32Enc is an unpadded base32 alphabet, used for filesystem-safe
// on-disk names the way the Local KV Store derives filenames from ids.
var base32Enc = base32.StdEncoding.WithPadding(base32.NoPadding)

// Base32 returns a filesystem-safe base32 encoding of the identifier,
// used directly as (part of) a Local KV Store filename.
func (x ID) Base32() string {
	return base32Enc.EncodeToString(x[:])
}

// ParseBase32 is the inverse of Base32.
func ParseBase32(s string) (ID, error) {
	const op = "id.ParseBase32"
	b, err := base32Enc.DecodeString(strings.ToUpper(s))
	if err != nil || len(b) != Len {
		return Zero, errors.E(op, errors.Invalid, errors.Errorf("bad base32 identifier: %q", s))
	}
	var out ID
	copy(out[:], b)
	return out, nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
