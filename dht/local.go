package dht

import (
	"chordfs.io/id"
	"chordfs.io/kv"
)

// Local is the facade's single-authority variant: every identifier is
// served from one disk-backed kv.Local store, with no ring routing at
// all. It is what a lone node, or a node acting as the ring's server
// adapter for its own portion of the keyspace, actually writes
// through.
type Local struct {
	store *kv.Local
}

// NewLocal returns a Local-backed DHT facade rooted at dir.
func NewLocal(dir string) (*Local, error) {
	store, err := kv.NewLocal(dir)
	if err != nil {
		return nil, err
	}
	return &Local{store: store}, nil
}

var _ Store = (*Local)(nil)

func (l *Local) Put(key id.ID, subkey string, data []byte, nick string) error {
	return l.store.Put(key, subkey, data)
}

func (l *Local) Get(key id.ID, subkey string) ([]byte, error) {
	return l.store.Get(key, subkey)
}
