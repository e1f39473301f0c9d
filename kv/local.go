package kv

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"

	"chordfs.io/errors"
	"chordfs.io/id"
)

// Local is a disk-backed Store: one file per (key, subkey) pair,
// named "<base32 key>-<subkey>" inside Dir, the same filename shape
// the reference Local KV Store uses so that stores created by either
// implementation can share a data directory.
type Local struct {
	Dir string
}

// NewLocal returns a Local store rooted at dir, creating dir if
// necessary.
func NewLocal(dir string) (*Local, error) {
	const op = "kv.NewLocal"
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.E(op, errors.IO, err)
	}
	return &Local{Dir: dir}, nil
}

var _ Store = (*Local)(nil)

// subkeySafe matches the subkeys this module actually issues: decimal
// part indices and the literal "Main". Anything else is rejected
// rather than risking a path traversal through a crafted subkey.
var subkeySafe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func (l *Local) filename(key id.ID, subkey string) (string, error) {
	if !subkeySafe.MatchString(subkey) {
		return "", errors.E("kv.Local", subkey, errors.Invalid, errors.Str("unsafe subkey"))
	}
	return filepath.Join(l.Dir, key.Base32()+"-"+subkey), nil
}

func (l *Local) Put(key id.ID, subkey string, data []byte) error {
	const op = "kv.Local.Put"
	name, err := l.filename(key, subkey)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(name, data, 0600); err != nil {
		return errors.E(op, name, errors.IO, err)
	}
	return nil
}

func (l *Local) Get(key id.ID, subkey string) ([]byte, error) {
	const op = "kv.Local.Get"
	name, err := l.filename(key, subkey)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.E(op, name, errors.NoReference)
		}
		return nil, errors.E(op, name, errors.IO, err)
	}
	return data, nil
}

func (l *Local) Delete(key id.ID, subkey string) error {
	const op = "kv.Local.Delete"
	name, err := l.filename(key, subkey)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return errors.E(op, name, errors.IO, err)
	}
	return nil
}
