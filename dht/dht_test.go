package dht

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"chordfs.io/id"
	"chordfs.io/kv"
	"chordfs.io/ring"
)

func TestMemoryPutGet(t *testing.T) {
	d := NewMemory()
	key := id.Sum([]byte("x"))
	if err := d.Put(key, "0", []byte("hello"), "alice"); err != nil {
		t.Fatal(err)
	}
	got, err := d.Get(key, "0")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("got %q", got)
	}
}

// TestRemoteClientRoundTrip exercises RemoteClient -> ring.Node ->
// ServerAdapter -> kv.Memory. The node is alone on its ring, so it
// owns every key and handles the messages itself; the loopback HTTP
// server only gives the node an address and is not called.
func TestRemoteClientRoundTrip(t *testing.T) {
	store := kv.NewMemory()
	adapter := NewServerAdapter(store)
	self := ring.Peer{ID: id.Sum([]byte("node"))}
	node := ring.NewNode(self, adapter)
	srv := httptest.NewServer(ring.NewServer(node).Handler())
	defer srv.Close()
	node.Self.Addr = strings.TrimPrefix(srv.URL, "http://")

	client := NewRemoteClient(node, "alice")
	key := id.Sum([]byte("some/path"))
	if err := client.Put(key, "0", []byte("payload"), ""); err != nil {
		t.Fatal(err)
	}
	got, err := client.Get(key, "0")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("got %q, want %q", got, "payload")
	}
}
