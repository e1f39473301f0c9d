package keys

import (
	"bytes"
	"testing"
)

func TestECBRoundTrip(t *testing.T) {
	key := PasswordToKey("correct horse battery staple")
	plain := bytes.Repeat([]byte{0x42}, KeySize)
	wrapped, err := WrapECB(key, plain)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnwrapECB(key, wrapped)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("got %x, want %x", got, plain)
	}
}

func TestWrapUnwrapNilKey(t *testing.T) {
	plain := []byte("0123456789abcdef")
	wrapped, err := Wrap(plain, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(wrapped, plain) {
		t.Fatalf("expected passthrough, got %x", wrapped)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	key, err := Random()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(Encode(key))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("got %x, want %x", got, key)
	}
}

func TestPasswordToKeyDeterministic(t *testing.T) {
	a := PasswordToKey("hunter2")
	b := PasswordToKey("hunter2")
	if !bytes.Equal(a, b) {
		t.Fatal("PasswordToKey should be deterministic for the same password")
	}
	if bytes.Equal(a, PasswordToKey("hunter3")) {
		t.Fatal("different passwords should not collide")
	}
}
