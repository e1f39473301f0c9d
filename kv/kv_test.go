package kv

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"chordfs.io/errors"
	"chordfs.io/id"
)

func TestMemoryPutGetDelete(t *testing.T) {
	testStore(t, NewMemory())
}

func TestLocalPutGetDelete(t *testing.T) {
	dir, err := ioutil.TempDir("", "kvlocal")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, store)
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	key := id.Sum([]byte("some content"))
	if err := s.Put(key, "0", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(key, "0")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("got %q, want %q", got, "hello")
	}
	if err := s.Delete(key, "0"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(key, "0"); !errors.Is(errors.NoReference, err) {
		t.Fatalf("expected NoReference after delete, got %v", err)
	}
}

func TestLocalRejectsUnsafeSubkey(t *testing.T) {
	dir, err := ioutil.TempDir("", "kvlocal")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := id.Sum([]byte("x"))
	if err := store.Put(key, "../escape", []byte("x")); err == nil {
		t.Fatal("expected rejection of path-traversal subkey")
	}
}
