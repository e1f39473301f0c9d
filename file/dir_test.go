package file

import (
	"testing"

	"chordfs.io/dht"
	"chordfs.io/keys"
	"chordfs.io/uri"
)

func TestDirectoryMarshalRoundTrip(t *testing.T) {
	d := &Directory{
		Self:   "dfsd://alice@AAAA",
		Parent: "dfsd://alice@BBBB",
		Entries: []Entry{
			{Name: "notes.txt", URI: "dfsf://alice@CCCC"},
			{Name: "photos", URI: "dfsd://alice@DDDD"},
		},
	}
	got, err := UnmarshalDirectory(d.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if got.Self != d.Self || got.Parent != d.Parent {
		t.Fatalf("self/parent mismatch: %+v", got)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(got.Entries))
	}
	if e, ok := got.Lookup("notes.txt"); !ok || e.URI != "dfsf://alice@CCCC" {
		t.Fatalf("lookup failed: %+v, %v", e, ok)
	}
}

func TestDirectoryPutLoadRoundTrip(t *testing.T) {
	store := dht.NewMemory()
	u, err := uri.Random("alice", true)
	if err != nil {
		t.Fatal(err)
	}
	d := &Directory{
		Self: u.String(),
		Entries: []Entry{
			{Name: "readme", URI: "dfsf://alice@AAAA"},
		},
	}
	if err := d.Put(store, u, keys.Set{}, "", "alice", DefaultBlockSize, DefaultDescPerMetapart); err != nil {
		t.Fatal(err)
	}
	got, err := LoadDirectory(store, u, keys.Set{}, DefaultBlockSize)
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := got.Lookup("readme"); !ok || e.URI != "dfsf://alice@AAAA" {
		t.Fatalf("got %+v", got)
	}
}

func TestDirectoryRootHasNoParent(t *testing.T) {
	d := &Directory{Self: "dfsd://alice@ROOT"}
	got, err := UnmarshalDirectory(d.Marshal())
	if err != nil {
		t.Fatal(err)
	}
	if got.Parent != "" {
		t.Fatalf("root directory should have no parent, got %q", got.Parent)
	}
}
