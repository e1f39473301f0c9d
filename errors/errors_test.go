package errors

import (
	"testing"
)

func TestMarshal(t *testing.T) {
	e := &Error{
		Resource: "dfs://alice/notes.txt",
		Op:       "file.Open",
		Kind:     NotFound,
		Err:      Str("underlying disk error"),
	}
	b := e.MarshalAppend(nil)
	var e2 Error
	if err := e2.UnmarshalBinary(b); err != nil {
		t.Fatal(err)
	}
	if e2.Resource != e.Resource || e2.Op != e.Op || e2.Kind != e.Kind {
		t.Fatalf("got %+v, want %+v", e2, *e)
	}
	if e2.Err.Error() != e.Err.Error() {
		t.Fatalf("got %q, want %q", e2.Err.Error(), e.Err.Error())
	}
}

func TestE(t *testing.T) {
	firstErr := E("ring.Node.Join", IO, Str("dial tcp: connection refused"))
	err := E("ring.Node.Route", RoutingError, firstErr)
	if !Is(RoutingError, err) {
		t.Errorf("Is(RoutingError, err) = false, want true")
	}
	want := "ring.Node.Route: routing error:\n\tring.Node.Join: I/O error: dial tcp: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(NotFound, Str("plain")) {
		t.Error("Is should be false for a plain error")
	}
}

var kindTests = []struct {
	k    Kind
	want string
}{
	{Other, "other error"},
	{NotFound, "not found"},
	{MalformedDescriptor, "malformed descriptor"},
	{RoutingError, "routing error"},
	{Closed, "closed"},
}

func TestKindString(t *testing.T) {
	for _, test := range kindTests {
		if got := test.k.String(); got != test.want {
			t.Errorf("Kind(%d).String() = %q, want %q", test.k, got, test.want)
		}
	}
}
