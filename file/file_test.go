package file

import (
	"bytes"
	"testing"

	"chordfs.io/dht"
	"chordfs.io/keys"
	"chordfs.io/uri"
)

func randomURI(t *testing.T) *uri.URI {
	t.Helper()
	u, err := uri.Random("alice", false)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestWriteReadRoundTripPlain(t *testing.T) {
	store := dht.NewMemory()
	u := randomURI(t)
	payload := []byte("the quick brown fox jumps over the lazy dog")

	w := NewWriter(store, u, keys.Set{}, "alice-1", "alice", DefaultBlockSize, DefaultDescPerMetapart)
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(store, u, keys.Set{}, DefaultBlockSize)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r.Bytes(), payload) {
		t.Fatalf("got %q, want %q", r.Bytes(), payload)
	}
	if r.Parts != 1 {
		t.Fatalf("expected a single part, got %d", r.Parts)
	}
	if r.UID != "alice-1" || r.Nick != "alice" {
		t.Fatalf("UID/Nick not recorded: %+v", r)
	}
}

func TestWriteReadRoundTripEncryptedChained(t *testing.T) {
	store := dht.NewMemory()
	u := randomURI(t)
	kf, err := keys.Random()
	if err != nil {
		t.Fatal(err)
	}
	ks := keys.Set{Kf: kf}
	payload := bytes.Repeat([]byte("chord"), 500) // several parts

	const blockSize = 512
	const descPerMetapart = 2 // force the chain to span more than one link
	w := NewWriter(store, u, ks, "", "alice", blockSize, descPerMetapart)
	if _, err := w.Write(payload); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(store, u, ks, blockSize)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(r.Bytes(), payload) {
		t.Fatalf("length got %d want %d", len(r.Bytes()), len(payload))
	}
	if r.Parts <= descPerMetapart {
		t.Fatalf("expected the descriptor chain to span multiple metaparts, got %d parts", r.Parts)
	}
}

func TestDescriptorTooLargeForBlockSizeFails(t *testing.T) {
	store := dht.NewMemory()
	u := randomURI(t)
	w := NewWriter(store, u, keys.Set{}, "", "alice", 16, DefaultDescPerMetapart)
	w.Write(bytes.Repeat([]byte("x"), 1000))
	if err := w.Close(); err == nil {
		t.Fatal("expected descriptor-too-large error for a block size too small to hold its own part list")
	}
}

func TestOpenMissingFails(t *testing.T) {
	store := dht.NewMemory()
	u := randomURI(t)
	if _, err := Open(store, u, keys.Set{}, DefaultBlockSize); err == nil {
		t.Fatal("expected an error reading a file that was never written")
	}
}
