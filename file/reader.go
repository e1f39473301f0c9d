package file

import (
	"crypto/aes"
	"crypto/cipher"
	"io"

	"chordfs.io/dht"
	"chordfs.io/errors"
	"chordfs.io/id"
	"chordfs.io/keys"
	"chordfs.io/uri"
)

// Reader serves a file's plaintext. Opening it walks the descriptor
// chain, fetches every ciphertext part it names, and decrypts the
// whole concatenated stream in one AES-CBC pass keyed by Kf with
// IV=Hd -- the decryption side of the same continuous stream Writer
// produces. Per this format's sequential-access design, a Reader has
// no Seek: the whole plaintext is fetched and decrypted eagerly at
// Open and served by Read in order, exactly as client/file/file.go's
// read mode does for its callers.
type Reader struct {
	plain  []byte
	offset int
	length int64

	// Hash and Parts are exposed for callers that want to verify
	// integrity or report size without re-deriving them.
	Hash  string
	Parts int
	UID   string
	Nick  string
}

var (
	_ io.Reader = (*Reader)(nil)
	_ io.Closer = (*Reader)(nil)
)

// Open walks u's descriptor chain starting at its own Hd, fetches
// every ciphertext part named along the way, decrypts the
// concatenated stream, and returns a Reader positioned at the start.
func Open(store dht.Store, u *uri.URI, ks keys.Set, blockSize int) (*Reader, error) {
	const op = "file.Open"
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	hd, err := u.Hd()
	if err != nil {
		return nil, errors.E(op, err)
	}

	root, err := fetchDescriptorLink(store, hd, ks)
	if err != nil {
		return nil, errors.E(op, err)
	}

	var partURIs []string
	totalParts := 0
	link := root
	for {
		partURIs = append(partURIs, link.PartURIs...)
		totalParts += link.Parts
		if link.Next == "" {
			break
		}
		nextURI, err := uri.Parse(link.Next, ks.Kd)
		if err != nil {
			return nil, errors.E(op, errors.MalformedDescriptor, err)
		}
		nextHd, err := nextURI.Hd()
		if err != nil {
			return nil, errors.E(op, errors.MalformedDescriptor, err)
		}
		link, err = fetchDescriptorLink(store, nextHd, ks)
		if err != nil {
			return nil, errors.E(op, err)
		}
	}
	if len(partURIs) != totalParts {
		return nil, errors.E(op, u.String(), errors.MalformedDescriptor,
			errors.Str("descriptor chain part count mismatch"))
	}

	ciphertext := make([]byte, 0, totalParts*blockSize)
	for _, pu := range partURIs {
		partURI, err := uri.Parse(pu, ks.Kd)
		if err != nil {
			return nil, errors.E(op, errors.MalformedDescriptor, err)
		}
		partHd, err := partURI.Hd()
		if err != nil {
			return nil, errors.E(op, errors.MalformedDescriptor, err)
		}
		part, err := store.Get(partHd, dht.MainSubkey)
		if err != nil {
			return nil, errors.E(op, err)
		}
		ciphertext = append(ciphertext, part...)
	}

	plain := ciphertext
	if kf := ks.Get(keys.Kf); kf != nil {
		block, err := aes.NewCipher(kf)
		if err != nil {
			return nil, errors.E(op, errors.Internal, err)
		}
		if len(ciphertext)%block.BlockSize() != 0 {
			return nil, errors.E(op, u.String(), errors.MalformedDescriptor,
				errors.Str("ciphertext not a multiple of the cipher block size"))
		}
		plain = make([]byte, len(ciphertext))
		cipher.NewCBCDecrypter(block, hd[:]).CryptBlocks(plain, ciphertext)
	}
	if int64(len(plain)) < root.Length {
		return nil, errors.E(op, u.String(), errors.MalformedDescriptor,
			errors.Str("decrypted plaintext shorter than recorded length"))
	}
	plain = plain[:root.Length]

	return &Reader{
		plain:  plain,
		length: root.Length,
		Hash:   root.Hash,
		Parts:  totalParts,
		UID:    root.UID,
		Nick:   root.Nick,
	}, nil
}

// fetchDescriptorLink fetches and decrypts one descriptor block stored
// at linkID, keyed under Kff (or linkID itself as a fallback) with
// IV=linkID, the Hd of that link's own storage URI.
func fetchDescriptorLink(store dht.Store, linkID id.ID, ks keys.Set) (*descriptor, error) {
	const op = "file.fetchDescriptorLink"
	raw, err := store.Get(linkID, dht.MainSubkey)
	if err != nil {
		return nil, errors.E(op, err)
	}
	plain, err := decryptMetadata(ks.Get(keys.Kff), linkID, raw)
	if err != nil {
		return nil, errors.E(op, err)
	}
	d, err := decodeDescriptor(plain)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return d, nil
}

// Read implements io.Reader. It serves the already-decrypted
// plaintext in order; there is no random access.
func (r *Reader) Read(p []byte) (int, error) {
	if r.offset >= len(r.plain) {
		return 0, io.EOF
	}
	n := copy(p, r.plain[r.offset:])
	r.offset += n
	return n, nil
}

// Close releases the Reader. The whole plaintext already lives in
// memory, so Close has nothing to flush; it exists to satisfy
// io.Closer for callers that treat every open handle uniformly.
func (r *Reader) Close() error {
	r.plain = nil
	return nil
}

// Bytes returns the full decrypted plaintext, the normal way a caller
// retrieves a file's content under this format's whole-file read model.
func (r *Reader) Bytes() []byte {
	return r.plain
}
