// Package uri parses and builds the locators this module names files
// and directories with: a readable form meant for humans to type, and
// two static forms that carry a precomputed content identifier
// instead of a path, the way path.Parse turns a name into a validated,
// cleaned Parsed value elsewhere in this codebase's ancestry.
package uri

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"chordfs.io/errors"
	"chordfs.io/id"
	"chordfs.io/keys"
)

// Kind distinguishes the two static forms and marks the readable one.
type Kind int

const (
	Readable Kind = iota // dfs://[nick@][uid/]path
	File                 // dfsf://nick@<base32 Hd>
	Dir                  // dfsd://nick@<base32 Hd>
)

var (
	readableExp = regexp.MustCompile(`^dfs://(?:([^@/]+)@)?(?:([0-9]+)/)?(.*)$`)
	staticExp   = regexp.MustCompile(`^dfs([fd])://([^@]+)@([A-Za-z2-7]+)$`)
)

var base32Enc = base32.StdEncoding.WithPadding(base32.NoPadding)

// URI identifies a file or directory. The zero value is not valid;
// construct one with Parse or Random.
type URI struct {
	kind Kind

	// Readable-form fields.
	nick string
	uid  string
	path string

	// Static-form fields.
	isDir bool
	hd    id.ID
	hdSet bool

	// Kd optionally wraps Hd at rest (and on the wire, inside the
	// static form's identifier) the way a URI's directory key wraps
	// its identifier when the URI must not be computable by a reader
	// who lacks the key.
	kd []byte
}

// Parse interprets s as either a readable (dfs://) or static
// (dfsf://, dfsd://) URI. kd, if non-nil, unwraps a static URI's
// identifier. A readable URI's identifier is always derived, never
// carried, so kd does not change it; kd is kept on the URI and wraps
// the identifier that Static renders.
func Parse(s string, kd []byte) (*URI, error) {
	const op = "uri.Parse"
	if m := readableExp.FindStringSubmatch(s); m != nil && strings.HasPrefix(s, "dfs://") {
		u := &URI{
			kind: Readable,
			nick: m[1],
			uid:  m[2],
			path: m[3],
			kd:   kd,
		}
		if u.path == "" {
			return nil, errors.E(op, s, errors.Invalid, errors.Str("empty path"))
		}
		return u, nil
	}
	if m := staticExp.FindStringSubmatch(s); m != nil {
		raw, err := base32Enc.DecodeString(strings.ToUpper(m[3]))
		if err != nil || len(raw) != id.Len {
			return nil, errors.E(op, s, errors.Invalid, errors.Str("bad static identifier"))
		}
		if kd != nil {
			raw, err = keys.UnwrapECB(kd, raw)
			if err != nil {
				return nil, errors.E(op, s, errors.Invalid, err)
			}
		}
		var hd id.ID
		copy(hd[:], raw)
		return &URI{
			kind:  map[string]Kind{"f": File, "d": Dir}[m[1]],
			nick:  m[2],
			isDir: m[1] == "d",
			hd:    hd,
			hdSet: true,
			kd:    kd,
		}, nil
	}
	return nil, errors.E(op, s, errors.Invalid, errors.Str("not a dfs URI"))
}

// Random builds a static URI around a freshly generated identifier,
// used when creating a file or directory whose name was not chosen by
// a human (e.g. an anonymous upload).
func Random(nick string, isDir bool) (*URI, error) {
	const op = "uri.Random"
	var raw [id.Len]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	var hd id.ID
	copy(hd[:], raw[:])
	return FromHd(nick, isDir, hd), nil
}

// FromHd builds a static URI around an already-known identifier, used
// when a caller (the file engine, assigning a part or a chained
// descriptor block its own locator) has already generated or derived
// the identifier and only needs it wrapped as a URI.
func FromHd(nick string, isDir bool, hd id.ID) *URI {
	kind := File
	if isDir {
		kind = Dir
	}
	return &URI{kind: kind, nick: nick, isDir: isDir, hd: hd, hdSet: true}
}

// IsDir reports whether this URI names a directory. For a readable
// URI the path alone does not distinguish file from directory, so
// IsDir reports what SetDir last recorded (false by default).
func (u *URI) IsDir() bool { return u.kind == Dir || (u.kind == Readable && u.isDir) }

// SetDir marks a readable URI as naming a directory. It has no effect
// on a static URI, whose kind already encodes this.
func (u *URI) SetDir(isDir bool) {
	if u.kind == Readable {
		u.isDir = isDir
	}
}

// Nick returns the URI's author nickname, if present.
func (u *URI) Nick() string { return u.nick }

// Readable renders the dfs:// form. It is only meaningful for a URI
// built from Parse(readable) or one that otherwise carries a path;
// a purely static URI has no readable form and Readable returns "".
func (u *URI) Readable() string {
	if u.kind != Readable {
		return ""
	}
	var b strings.Builder
	b.WriteString("dfs://")
	if u.nick != "" {
		b.WriteString(u.nick)
		b.WriteByte('@')
	}
	if u.uid != "" {
		b.WriteString(u.uid)
		b.WriteByte('/')
	}
	b.WriteString(u.path)
	return b.String()
}

// Static renders the dfsf:// or dfsd:// form.
func (u *URI) Static() (string, error) {
	const op = "uri.Static"
	h, err := u.Hd()
	if err != nil {
		return "", errors.E(op, err)
	}
	raw := h[:]
	if u.kd != nil {
		wrapped, err := keys.WrapECB(u.kd, raw)
		if err != nil {
			return "", errors.E(op, err)
		}
		raw = wrapped
	}
	scheme := "dfsf"
	if u.IsDir() {
		scheme = "dfsd"
	}
	return fmt.Sprintf("%s://%s@%s", scheme, u.nick, base32Enc.EncodeToString(raw)), nil
}

// Hd derives the content identifier for this URI: for a static URI
// it's the identifier it already carries; for a readable one it's the
// first 16 bytes of the SHA-1 digest of the NFC-normalized readable
// string, computed once and cached.
func (u *URI) Hd() (id.ID, error) {
	if u.hdSet {
		return u.hd, nil
	}
	readable := u.Readable()
	if readable == "" {
		return id.Zero, errors.E("uri.Hd", errors.Invalid, errors.Str("URI has neither a path nor a static identifier"))
	}
	normalized := norm.NFC.String(readable)
	u.hd = id.Sum([]byte(normalized))
	u.hdSet = true
	return u.hd, nil
}

// String renders the most specific form this URI was built with.
func (u *URI) String() string {
	if u.kind == Readable {
		return u.Readable()
	}
	s, err := u.Static()
	if err != nil {
		return fmt.Sprintf("dfs:<invalid: %v>", err)
	}
	return s
}
