package config

import (
	"io/ioutil"
	"os"
	"testing"

	"chordfs.io/keys"
)

func TestGetSetTypedValues(t *testing.T) {
	c := New()
	c.Set("Main:UID", "42")
	c.Set("Ring:bootstrap", "true")
	c.Set("File:block", "2048")

	if got, want := c.String("Main:UID", ""), "42"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
	if got, want := c.Int("File:block", 1024), 2048; got != want {
		t.Errorf("Int: got %d, want %d", got, want)
	}
	if !c.Bool("Ring:bootstrap", false) {
		t.Error("Bool: expected true")
	}
	if got, want := c.Int("Missing:key", 7), 7; got != want {
		t.Errorf("Int default: got %d, want %d", got, want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := New()
	c.Set("Main:UID", "7")
	f, err := ioutil.TempFile("", "cfg*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := loaded.String("Main:UID", ""), "7"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetSetKeyWrapped(t *testing.T) {
	c := New()
	encKey := keys.PasswordToKey("s3cret")
	fileKey, err := keys.Random()
	if err != nil {
		t.Fatal(err)
	}
	if err := SetKey(c, keys.Kf, fileKey, encKey); err != nil {
		t.Fatal(err)
	}
	got, err := GetKey(c, keys.Kf, encKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(fileKey) {
		t.Fatalf("got %x, want %x", got, fileKey)
	}
}
