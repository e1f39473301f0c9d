package file

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"chordfs.io/dht"
	"chordfs.io/errors"
	"chordfs.io/keys"
	"chordfs.io/uri"
)

// Reserved entry names. A directory's own self-reference and its
// parent are recorded under these names rather than folded into the
// ordinary entry list, resolving the asymmetry between "./" (always
// resolvable, every directory has one) and "../" (absent for the root
// directory, which has no parent) with two dedicated optional fields
// instead of two ordinary entries that would need special-casing on
// every read.
const (
	selfName   = "./"
	parentName = "../"
)

// Entry is one named child of a Directory.
type Entry struct {
	Name string
	URI  string // static dfsf:// or dfsd:// form
}

// Directory is the decoded form of a directory's file contents: an
// ordered list of named children plus optional self and parent
// references. Serialized form is one "name:static-uri" line per
// entry, the same flat line-oriented layout the reference
// implementation's directory files use.
type Directory struct {
	Entries []Entry
	Self    string // this directory's own static URI, if known
	Parent  string // the parent directory's static URI, "" at the root
}

// Marshal renders d in the "name:uri\n" line format.
func (d *Directory) Marshal() []byte {
	var b bytes.Buffer
	if d.Self != "" {
		fmt.Fprintf(&b, "%s:%s\n", selfName, d.Self)
	}
	if d.Parent != "" {
		fmt.Fprintf(&b, "%s:%s\n", parentName, d.Parent)
	}
	for _, e := range d.Entries {
		fmt.Fprintf(&b, "%s:%s\n", e.Name, e.URI)
	}
	return b.Bytes()
}

// UnmarshalDirectory parses the line format Marshal produces.
func UnmarshalDirectory(data []byte) (*Directory, error) {
	const op = "file.UnmarshalDirectory"
	d := &Directory{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		i := strings.IndexByte(line, ':')
		if i < 0 {
			return nil, errors.E(op, errors.MalformedDescriptor, errors.Errorf("bad directory line: %q", line))
		}
		name, u := line[:i], line[i+1:]
		switch name {
		case selfName:
			d.Self = u
		case parentName:
			d.Parent = u
		default:
			d.Entries = append(d.Entries, Entry{Name: name, URI: u})
		}
	}
	return d, nil
}

// Lookup returns the entry named name, or ok == false if absent.
func (d *Directory) Lookup(name string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Put marshals d and writes it as the file content at u, through the
// same chunked, encrypted write path an ordinary file uses: a
// directory is simply a file whose plaintext is a listing.
func (d *Directory) Put(store dht.Store, u *uri.URI, ks keys.Set, uid, nick string, blockSize, descPerMetapart int) error {
	return d.PutWithBuffer(store, u, ks, uid, nick, blockSize, descPerMetapart, DefaultMaxBuffer)
}

// PutWithBuffer is Put with an explicit maxBuffer, the threshold past
// which the underlying Writer auto-flushes (see NewWriterWithBuffer).
func (d *Directory) PutWithBuffer(store dht.Store, u *uri.URI, ks keys.Set, uid, nick string, blockSize, descPerMetapart, maxBuffer int) error {
	const op = "file.Directory.Put"
	w := NewWriterWithBuffer(store, u, ks, uid, nick, blockSize, descPerMetapart, maxBuffer)
	if _, err := w.Write(d.Marshal()); err != nil {
		return errors.E(op, err)
	}
	if err := w.Close(); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// LoadDirectory reads and parses the directory stored at u.
func LoadDirectory(store dht.Store, u *uri.URI, ks keys.Set, blockSize int) (*Directory, error) {
	const op = "file.LoadDirectory"
	r, err := Open(store, u, ks, blockSize)
	if err != nil {
		return nil, errors.E(op, err)
	}
	defer r.Close()
	d, err := UnmarshalDirectory(r.Bytes())
	if err != nil {
		return nil, errors.E(op, err)
	}
	return d, nil
}
