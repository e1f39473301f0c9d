package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"hash"

	"golang.org/x/crypto/pbkdf2"

	"chordfs.io/errors"
)

func newSHA1() hash.Hash { return sha1.New() }

// KeySize is the width, in bytes, of every symmetric key this module
// uses: Hd, Kd, Kf, Ks, Kss, Kff, Kgg are all single AES-128 blocks.
const KeySize = 16

// Names of the symmetric keys a URI or file may carry, matching the
// key set the configuration file persists under the "Keys:" section.
const (
	Kd  = "kd"  // wraps Hd when a URI is not publicly resolvable
	Kf  = "kf"  // encrypts file part ciphertext
	Ks  = "ks"  // reserved for a streaming variant of Kf
	Kss = "kss" // reserved for a streaming variant of Kd
	Kff = "kff" // encrypts descriptor metadata, falls back to Hd
	Kgg = "kgg" // reserved for a streaming variant of Kff
)

// Set bundles the keys associated with one URI.
type Set struct {
	Kd, Kf, Ks, Kss, Kff, Kgg []byte
}

// Get returns the named key, or nil if unset.
func (s Set) Get(name string) []byte {
	switch name {
	case Kd:
		return s.Kd
	case Kf:
		return s.Kf
	case Ks:
		return s.Ks
	case Kss:
		return s.Kss
	case Kff:
		return s.Kff
	case Kgg:
		return s.Kgg
	}
	return nil
}

// salt is fixed rather than random: the password-derived key must be
// reproducible from the password alone, with no side channel to carry
// a per-installation salt.
var salt = []byte("chordfs-key-wrap-v1")

// PasswordToKey derives a 16-byte AES key from a password via PBKDF2-HMAC-SHA1.
func PasswordToKey(password string) []byte {
	return pbkdf2.Key([]byte(password), salt, 4096, KeySize, newSHA1)
}

// Random returns a fresh random key suitable for Kf, Kd, and friends.
func Random() ([]byte, error) {
	const op = "keys.Random"
	b := make([]byte, KeySize)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return b, nil
}

var base32KeyEnc = base32.StdEncoding.WithPadding(base32.NoPadding)

// Encode renders a key as base32 text, the form stored in the
// configuration file's "Keys:" section.
func Encode(key []byte) string { return base32KeyEnc.EncodeToString(key) }

// Decode is the inverse of Encode.
func Decode(s string) ([]byte, error) {
	const op = "keys.Decode"
	b, err := base32KeyEnc.DecodeString(s)
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	return b, nil
}

// Wrap encrypts key for storage under encKey using single-block ECB,
// mirroring how a URI's Hd is optionally wrapped under Kd. If encKey
// is nil, key is returned unencrypted (still base32-encoded on disk).
func Wrap(key, encKey []byte) ([]byte, error) {
	if encKey == nil {
		return key, nil
	}
	return WrapECB(encKey, key)
}

// Unwrap is the inverse of Wrap.
func Unwrap(wrapped, encKey []byte) ([]byte, error) {
	if encKey == nil {
		return wrapped, nil
	}
	return UnwrapECB(encKey, wrapped)
}

func newAESCipher(key []byte) (cipher.Block, error) {
	return aes.NewCipher(key)
}
