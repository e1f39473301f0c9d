package dht

import (
	"chordfs.io/id"
	"chordfs.io/kv"
)

// Memory is the facade's in-process variant: a direct wrapper over
// kv.Memory with the author nickname discarded, used by tests that
// want the file engine exercised without any disk or network I/O.
type Memory struct {
	store *kv.Memory
}

// NewMemory returns an empty Memory-backed DHT facade.
func NewMemory() *Memory {
	return &Memory{store: kv.NewMemory()}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Put(key id.ID, subkey string, data []byte, nick string) error {
	return m.store.Put(key, subkey, data)
}

func (m *Memory) Get(key id.ID, subkey string) ([]byte, error) {
	return m.store.Get(key, subkey)
}
