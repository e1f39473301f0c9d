package file

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
	"hash"

	"chordfs.io/dht"
	"chordfs.io/errors"
	"chordfs.io/id"
	"chordfs.io/keys"
	"chordfs.io/uri"
)

// DefaultMaxBuffer bounds how much unflushed plaintext a Writer holds
// in memory before Write triggers an automatic flush.
const DefaultMaxBuffer = 4096

// Writer accumulates plaintext and lazily flushes it, BlockSize bytes
// at a time, into independently-addressed ciphertext parts under a
// single continuous AES-CBC stream keyed by Kf with IV=Hd. Each part
// is assigned its own fresh random URI; whole blocks are written to
// the DHT facade once the unflushed buffer exceeds maxBuffer, rather
// than buffering the whole file. Close flushes whatever remains
// (padding a final partial block) and then writes the chained,
// encrypted descriptor. This
// mirrors the lazy flush-on-threshold-or-close behavior of
// client/file/file.go in this module's ancestry.
type Writer struct {
	store           dht.Store
	u               *uri.URI
	keys            keys.Set
	uid             string
	nick            string
	blockSize       int
	maxBuffer       int
	descPerMetapart int

	initialized bool
	hd          id.ID
	enc         cipher.BlockMode // nil when no Kf is configured
	hasher      hash.Hash
	length      int64
	partURIs    []string

	buf    bytes.Buffer
	closed bool
}

// NewWriter returns a Writer that will store u's ciphertext parts and
// descriptor chain through store, recording uid and nick on the root
// descriptor. blockSize, maxBuffer, and descPerMetapart fall back to
// DefaultBlockSize, DefaultMaxBuffer, and DefaultDescPerMetapart when
// zero or negative.
func NewWriter(store dht.Store, u *uri.URI, ks keys.Set, uid, nick string, blockSize, descPerMetapart int) *Writer {
	return NewWriterWithBuffer(store, u, ks, uid, nick, blockSize, descPerMetapart, DefaultMaxBuffer)
}

// NewWriterWithBuffer is NewWriter with an explicit maxBuffer, the
// threshold (in bytes of unflushed plaintext) past which Write
// triggers an automatic flush of whole blocks.
func NewWriterWithBuffer(store dht.Store, u *uri.URI, ks keys.Set, uid, nick string, blockSize, descPerMetapart, maxBuffer int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if descPerMetapart <= 0 {
		descPerMetapart = DefaultDescPerMetapart
	}
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return &Writer{
		store: store, u: u, keys: ks, uid: uid, nick: nick,
		blockSize: blockSize, descPerMetapart: descPerMetapart, maxBuffer: maxBuffer,
	}
}

// init derives the file's Hd and sets up the running hasher and
// content encryptor, once, on first use.
func (w *Writer) init() error {
	if w.initialized {
		return nil
	}
	const op = "file.Writer.init"
	hd, err := w.u.Hd()
	if err != nil {
		return errors.E(op, err)
	}
	w.hd = hd
	w.hasher = sha1.New()
	if kf := w.keys.Get(keys.Kf); kf != nil {
		block, err := aes.NewCipher(kf)
		if err != nil {
			return errors.E(op, errors.Internal, err)
		}
		w.enc = cipher.NewCBCEncrypter(block, hd[:])
	}
	w.initialized = true
	return nil
}

// Write buffers p, triggering a flush of whole blocks once the
// unflushed buffer exceeds maxBuffer.
func (w *Writer) Write(p []byte) (int, error) {
	const op = "file.Writer.Write"
	if w.closed {
		return 0, errors.E(op, errors.Closed)
	}
	if err := w.init(); err != nil {
		return 0, errors.E(op, err)
	}
	n, err := w.buf.Write(p)
	if err != nil {
		return n, errors.E(op, errors.IO, err)
	}
	w.length += int64(n)
	if w.buf.Len() > w.maxBuffer {
		if err := w.flush(false); err != nil {
			return n, errors.E(op, err)
		}
	}
	return n, nil
}

// flush encrypts and stores as many whole blockSize-byte blocks as
// are currently buffered. If all is true, it also flushes a final
// partial block, padded with random bytes to blockSize; callers must
// only pass all=true when no more data will be written (Close does
// this exactly once).
func (w *Writer) flush(all bool) error {
	const op = "file.Writer.flush"
	for {
		avail := w.buf.Len()
		if avail == 0 {
			return nil
		}
		if avail < w.blockSize && !all {
			return nil
		}
		n := w.blockSize
		if n > avail {
			n = avail
		}
		block := w.buf.Next(n)
		if len(block) < w.blockSize {
			padded := make([]byte, w.blockSize)
			copy(padded, block)
			if _, err := rand.Read(padded[len(block):]); err != nil {
				return errors.E(op, errors.IO, err)
			}
			block = padded
		}
		ciphertext := block
		if w.enc != nil {
			out := make([]byte, w.blockSize)
			w.enc.CryptBlocks(out, block)
			ciphertext = out
		}
		w.hasher.Write(ciphertext)
		partID, err := randomID()
		if err != nil {
			return errors.E(op, err)
		}
		if err := w.store.Put(partID, dht.MainSubkey, ciphertext, w.nick); err != nil {
			return errors.E(op, err)
		}
		w.partURIs = append(w.partURIs, uri.FromHd(w.nick, false, partID).String())
	}
}

// Close flushes any remaining buffered plaintext and writes the
// descriptor chain, marking the Writer unusable for further writes.
func (w *Writer) Close() error {
	const op = "file.Writer.Close"
	if w.closed {
		return nil
	}
	if err := w.init(); err != nil {
		w.closed = true
		return errors.E(op, err)
	}
	w.closed = true

	if err := w.flush(true); err != nil {
		return errors.E(op, err)
	}
	overallHash := hex.EncodeToString(w.hasher.Sum(nil))
	if err := w.writeDescriptorChain(w.hd, w.length, overallHash, w.partURIs); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// writeDescriptorChain splits partURIs into batches of at most
// descPerMetapart entries, storing them back to front so each link
// already knows the URI of the link after it before it is written.
// The first (front) link is stored at the file's own Hd; every
// subsequent link gets a fresh random URI.
func (w *Writer) writeDescriptorChain(hd id.ID, length int64, overallHash string, partURIs []string) error {
	const op = "file.writeDescriptorChain"
	var batches [][]string
	for i := 0; i < len(partURIs); i += w.descPerMetapart {
		end := i + w.descPerMetapart
		if end > len(partURIs) {
			end = len(partURIs)
		}
		batches = append(batches, partURIs[i:end])
	}
	if len(batches) == 0 {
		batches = [][]string{nil}
	}

	mdKey := w.keys.Get(keys.Kff)

	nextURI := ""
	for i := len(batches) - 1; i >= 0; i-- {
		d := &descriptor{Parts: len(batches[i]), PartURIs: batches[i], Next: nextURI}
		storageID := hd
		if i == 0 {
			d.UID = w.uid
			d.Nick = w.nick
			d.Length = length
			d.Hash = overallHash
		} else {
			var err error
			storageID, err = randomID()
			if err != nil {
				return errors.E(op, err)
			}
		}

		plain, err := padDescriptorBlock(d.encode(), w.blockSize)
		if err != nil {
			return errors.E(op, err)
		}
		cipherBlock, err := encryptMetadata(mdKey, storageID, plain)
		if err != nil {
			return errors.E(op, err)
		}
		if err := w.store.Put(storageID, dht.MainSubkey, cipherBlock, w.nick); err != nil {
			return errors.E(op, err)
		}
		nextURI = uri.FromHd(w.nick, false, storageID).String()
	}
	return nil
}

// encryptMetadata encrypts one descriptor link under Kff, with
// IV=blockID -- the Hd of that link's own storage URI, not the file's
// root Hd -- falling back to using blockID itself as both key and IV
// when no Kff is configured.
func encryptMetadata(mdKey []byte, blockID id.ID, plain []byte) ([]byte, error) {
	key := mdKey
	if key == nil {
		key = blockID[:]
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.E("file.encryptMetadata", errors.Internal, err)
	}
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, blockID[:]).CryptBlocks(out, plain)
	return out, nil
}

func decryptMetadata(mdKey []byte, blockID id.ID, ciphertext []byte) ([]byte, error) {
	key := mdKey
	if key == nil {
		key = blockID[:]
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.E("file.decryptMetadata", errors.Internal, err)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, blockID[:]).CryptBlocks(out, ciphertext)
	return out, nil
}

// padDescriptorBlock pads plain with random bytes to exactly
// blockSize, the invariant every stored descriptor block must satisfy.
// It fails rather than spanning multiple blocks: a descriptor that
// does not fit means descPerMetapart is too large for the configured
// blockSize, a configuration error, not something to silently grow
// around.
func padDescriptorBlock(plain []byte, blockSize int) ([]byte, error) {
	if len(plain) > blockSize {
		return nil, errors.E(errors.Internal, errors.Str(
			"descriptor block exceeds the configured block size; reduce descPerMetapart or increase blockSize"))
	}
	out := make([]byte, blockSize)
	copy(out, plain)
	rand.Read(out[len(plain):])
	return out, nil
}

func randomID() (id.ID, error) {
	var raw [id.Len]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return id.Zero, errors.E("file.randomID", errors.IO, err)
	}
	var out id.ID
	copy(out[:], raw[:])
	return out, nil
}
