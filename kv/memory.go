package kv

import (
	"sync"

	"chordfs.io/errors"
	"chordfs.io/id"
)

// Memory is an in-process Store backed by a guarded map, grounding the
// "Memory" DHT variant and useful directly in tests that don't want
// disk I/O.
type Memory struct {
	mu   sync.Mutex
	data map[id.ID]map[string][]byte
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{data: make(map[id.ID]map[string][]byte)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Put(key id.ID, subkey string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[key]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[key] = bucket
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	bucket[subkey] = cp
	return nil
}

func (m *Memory) Get(key id.ID, subkey string) ([]byte, error) {
	const op = "kv.Memory.Get"
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[key]
	if !ok {
		return nil, errors.E(op, key.String(), errors.NoReference)
	}
	data, ok := bucket[subkey]
	if !ok {
		return nil, errors.E(op, key.String()+":"+subkey, errors.NoReference)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *Memory) Delete(key id.ID, subkey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bucket, ok := m.data[key]; ok {
		delete(bucket, subkey)
		if len(bucket) == 0 {
			delete(m.data, key)
		}
	}
	return nil
}
