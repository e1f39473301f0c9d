// Package ring implements the Chord-style structured overlay: each
// Node tracks a predecessor and a successor, routes requests toward
// the peer that owns a given identifier, and exposes that routing to
// a small set of optional capability interfaces rather than requiring
// every caller to implement a monolithic listener.
package ring

import "chordfs.io/id"

// Peer is a ring member's identifier and dialable address.
type Peer struct {
	ID   id.ID
	Addr string // host:port
}
