// Package kv implements the Local KV Store: a flat keyspace addressed
// by (identifier, subkey), backed either by one file per entry on
// disk or, for tests and the in-memory DHT variant, by a guarded map.
// The disk layout mirrors store/filesystem and store/inprocess in
// this module's ancestry: a thin Store interface with a handful of
// interchangeable backends.
package kv

import (
	"chordfs.io/id"
)

// Store is the Local KV Store's contract: every DHT backend other
// than the remote-client one is ultimately a Store, possibly fronted
// by ring routing.
type Store interface {
	// Put writes data under (key, subkey), replacing any existing value.
	Put(key id.ID, subkey string, data []byte) error
	// Get reads the value stored under (key, subkey). It reports a
	// NoReference-kind error if nothing is stored there.
	Get(key id.ID, subkey string) ([]byte, error)
	// Delete removes the value stored under (key, subkey), if any.
	Delete(key id.ID, subkey string) error
}
