// Package dht implements the DHT Facade: a uniform put/get contract
// over four interchangeable backends, so the file engine never needs
// to know whether it is writing to local disk, a remote ring, or a
// bare in-memory map under test.
package dht

import (
	"chordfs.io/id"
)

// Store is the facade every backend implements. Unlike kv.Store, Put
// carries the author's nickname: the remote backends send it along
// with the write. Routing is by key alone, and neither the in-process
// backends nor the server-side ServerAdapter store or use it.
type Store interface {
	Put(key id.ID, subkey string, data []byte, nick string) error
	Get(key id.ID, subkey string) ([]byte, error)
}

// MainSubkey is the subkey every file-engine blob -- a ciphertext
// part or a descriptor block -- is stored under. Each gets its own
// identifier (the file's Hd for the root descriptor, a fresh random
// identifier for everything else), so a single well-known subkey is
// all that's needed beneath it.
const MainSubkey = "Main"
