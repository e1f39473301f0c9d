package id

import "testing"

// The identifiers of the three-node ring scenario (12, 123, 500):
// Between's (lo, hi] interval must order and wrap correctly between
// them. Ownership itself is [self, next) and is tested in package ring.
func TestBetweenThreeNodeRing(t *testing.T) {
	n12 := idOf(12)
	n123 := idOf(123)
	n500 := idOf(500)

	cases := []struct {
		x, lo, hi ID
		want      bool
		name      string
	}{
		{idOf(50), n12, n123, true, "50 lies in (12, 123]"},
		{idOf(200), n123, n500, true, "200 lies in (123, 500]"},
		{idOf(600), n500, n12, true, "600 lies in (500, 12], wrapping past the top"},
		{idOf(5), n500, n12, true, "5 lies in (500, 12], past the wrap"},
		{idOf(123), n12, n123, true, "123 lies in (12, 123], the upper bound is inclusive"},
		{idOf(124), n12, n123, false, "124 lies outside (12, 123]"},
	}
	for _, c := range cases {
		if got := c.x.Between(c.lo, c.hi); got != c.want {
			t.Errorf("%s: Between = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	want := Sum([]byte("some readable uri"))
	got, err := Parse(want.String())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %v, want %v", got, want)
	}
}

func TestBase32RoundTrip(t *testing.T) {
	want := Sum([]byte("another uri"))
	got, err := ParseBase32(want.Base32())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %v, want %v", got, want)
	}
}

func TestSumPassesThrough16ByteInput(t *testing.T) {
	var raw ID
	for i := range raw {
		raw[i] = byte(i)
	}
	if got := Sum(raw[:]); got != raw {
		t.Fatalf("Sum should pass 16-byte input through unchanged, got %v want %v", got, raw)
	}
}

func idOf(n uint64) ID {
	var out ID
	for i := 0; i < 8; i++ {
		out[i] = byte(n >> (8 * uint(i)))
	}
	return out
}
