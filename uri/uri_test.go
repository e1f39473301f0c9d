package uri

import "testing"

func TestReadableRoundTrip(t *testing.T) {
	u, err := Parse("dfs://alice@42/notes/today.txt", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := u.Readable(), "dfs://alice@42/notes/today.txt"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	h1, err := u.Hd()
	if err != nil {
		t.Fatal(err)
	}
	u2, err := Parse("dfs://alice@42/notes/today.txt", nil)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := u2.Hd()
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("identical readable URIs must derive identical identifiers")
	}
}

func TestStaticRoundTrip(t *testing.T) {
	u, err := Random("bob", false)
	if err != nil {
		t.Fatal(err)
	}
	s, err := u.Static()
	if err != nil {
		t.Fatal(err)
	}
	u2, err := Parse(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	h1, _ := u.Hd()
	h2, _ := u2.Hd()
	if h1 != h2 {
		t.Fatalf("round trip changed identifier: %v != %v", h1, h2)
	}
	if u2.IsDir() {
		t.Fatal("expected file, not directory")
	}
}

func TestStaticWrappedUnderKd(t *testing.T) {
	kd := []byte("0123456789abcdef")
	u, err := Random("carol", true)
	if err != nil {
		t.Fatal(err)
	}
	u.kd = kd
	s, err := u.Static()
	if err != nil {
		t.Fatal(err)
	}
	h1, _ := u.Hd()
	// A wrapped identifier still parses without kd, but it stays
	// wrapped: it does not yield the original identifier.
	u0, err := Parse(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if h0, _ := u0.Hd(); h0 == h1 {
		t.Fatal("expected parse without kd to leave the identifier wrapped")
	}
	u2, err := Parse(s, kd)
	if err != nil {
		t.Fatal(err)
	}
	if !u2.IsDir() {
		t.Fatal("expected directory")
	}
	h2, _ := u2.Hd()
	if h1 != h2 {
		t.Fatal("unwrapped identifier mismatch")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("http://example.com", nil); err == nil {
		t.Fatal("expected error for non-dfs URI")
	}
}
