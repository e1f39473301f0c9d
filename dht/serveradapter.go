package dht

import (
	"encoding/base64"

	"chordfs.io/errors"
	"chordfs.io/id"
	"chordfs.io/kv"
	"chordfs.io/ring"
)

// ServerAdapter makes a local kv.Store reachable through the ring: it
// implements ring.MessageHandler, answering the PUT and GET messages
// a RemoteClient elsewhere on the ring routes to whichever node
// currently owns a given identifier. This is the same split the
// reference implementation draws between its local disk store and
// the ring-facing service that fronts it.
type ServerAdapter struct {
	store kv.Store
}

// NewServerAdapter wraps store so a ring.Node can use it as a
// MessageHandler.
func NewServerAdapter(store kv.Store) *ServerAdapter {
	return &ServerAdapter{store: store}
}

var _ ring.MessageHandler = (*ServerAdapter)(nil)

// Message implements ring.MessageHandler. args[0] is "PUT" or "GET";
// PUT additionally carries the subkey, the author nickname (unused
// locally, kept for parity with the wire format), and the
// base64-encoded payload; GET carries only the subkey.
func (a *ServerAdapter) Message(to id.ID, args ...string) (string, error) {
	const op = "dht.ServerAdapter.Message"
	if len(args) < 2 {
		return "", errors.E(op, errors.Invalid, errors.Str("malformed DHT message"))
	}
	switch args[0] {
	case "PUT":
		if len(args) != 4 {
			return "", errors.E(op, errors.Invalid, errors.Str("malformed PUT"))
		}
		subkey, data := args[1], args[3]
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return "", errors.E(op, errors.Invalid, err)
		}
		if err := a.store.Put(to, subkey, raw); err != nil {
			return "", errors.E(op, err)
		}
		return "OK", nil
	case "GET":
		subkey := args[1]
		raw, err := a.store.Get(to, subkey)
		if err != nil {
			return "", errors.E(op, err)
		}
		return base64.StdEncoding.EncodeToString(raw), nil
	case "DELETE":
		subkey := args[1]
		if err := a.store.Delete(to, subkey); err != nil {
			return "", errors.E(op, err)
		}
		return "OK", nil
	}
	return "", errors.E(op, errors.Invalid, errors.Str("unknown DHT message verb: "+args[0]))
}
