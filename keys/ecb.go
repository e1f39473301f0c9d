// Package keys manages the symmetric keys a URI and a file carry: Kd
// (directory/URI wrapping), Kf (file part encryption), Ks/Kss (stream
// variants) and Kff/Kgg (descriptor metadata encryption), plus the
// password-derived key used to wrap them at rest.
package keys

import (
	"crypto/cipher"

	"chordfs.io/errors"
)

// ecb implements cipher.BlockMode for AES in Electronic Codebook mode.
// The standard library deliberately omits ECB — it leaks patterns in
// the plaintext and should not be used for bulk data — but this
// module's URI identifiers (Hd, exactly one block wide) are wrapped
// under Kd with ECB by design, so a single-block mode with no IV is
// the correct primitive here, not an oversight.
type ecb struct {
	b         cipher.Block
	blockSize int
}

func newECB(b cipher.Block) *ecb {
	return &ecb{b: b, blockSize: b.BlockSize()}
}

type ecbEncrypter ecb

// NewECBEncrypter returns a cipher.BlockMode that encrypts in ECB mode.
func NewECBEncrypter(b cipher.Block) cipher.BlockMode {
	return (*ecbEncrypter)(newECB(b))
}

func (x *ecbEncrypter) BlockSize() int { return x.blockSize }

func (x *ecbEncrypter) CryptBlocks(dst, src []byte) {
	if len(src)%x.blockSize != 0 {
		panic("keys: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("keys: output smaller than input")
	}
	for len(src) > 0 {
		x.b.Encrypt(dst, src[:x.blockSize])
		src = src[x.blockSize:]
		dst = dst[x.blockSize:]
	}
}

type ecbDecrypter ecb

// NewECBDecrypter returns a cipher.BlockMode that decrypts in ECB mode.
func NewECBDecrypter(b cipher.Block) cipher.BlockMode {
	return (*ecbDecrypter)(newECB(b))
}

func (x *ecbDecrypter) BlockSize() int { return x.blockSize }

func (x *ecbDecrypter) CryptBlocks(dst, src []byte) {
	if len(src)%x.blockSize != 0 {
		panic("keys: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("keys: output smaller than input")
	}
	for len(src) > 0 {
		x.b.Decrypt(dst, src[:x.blockSize])
		src = src[x.blockSize:]
		dst = dst[x.blockSize:]
	}
}

// WrapECB encrypts plain under key using ECB mode. len(plain) must be
// a whole number of 16-byte AES blocks; a key or an Hd is exactly one.
func WrapECB(key, plain []byte) ([]byte, error) {
	const op = "keys.WrapECB"
	b, err := newAESCipher(key)
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	if len(plain)%b.BlockSize() != 0 {
		return nil, errors.E(op, errors.Invalid, errors.Str("plaintext is not a whole number of blocks"))
	}
	out := make([]byte, len(plain))
	NewECBEncrypter(b).CryptBlocks(out, plain)
	return out, nil
}

// UnwrapECB is the inverse of WrapECB.
func UnwrapECB(key, cipherText []byte) ([]byte, error) {
	const op = "keys.UnwrapECB"
	b, err := newAESCipher(key)
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	if len(cipherText)%b.BlockSize() != 0 {
		return nil, errors.E(op, errors.Invalid, errors.Str("ciphertext is not a whole number of blocks"))
	}
	out := make([]byte, len(cipherText))
	NewECBDecrypter(b).CryptBlocks(out, cipherText)
	return out, nil
}
