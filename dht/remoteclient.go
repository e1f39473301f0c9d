package dht

import (
	"encoding/base64"

	"golang.org/x/sync/singleflight"

	"chordfs.io/errors"
	"chordfs.io/id"
	"chordfs.io/ring"
)

// RemoteClient is the facade variant that reaches the DHT through the
// ring: every Put or Get is a ring.MessageHandler round trip to
// whichever node owns the identifier, via the local ring node's own
// routing. A singleflight.Group collapses concurrent Gets for the
// same (key, subkey) into a single round trip, the natural
// efficiency win for a client under concurrent readers of the same
// popular content -- the same pattern bind.go uses to de-duplicate
// concurrent dials to the same service in this module's ancestry.
type RemoteClient struct {
	node  *ring.Node
	nick  string
	group singleflight.Group
}

// NewRemoteClient returns a Store that routes through node, tagging
// writes with nick.
func NewRemoteClient(node *ring.Node, nick string) *RemoteClient {
	return &RemoteClient{node: node, nick: nick}
}

var _ Store = (*RemoteClient)(nil)

func (r *RemoteClient) Put(key id.ID, subkey string, data []byte, nick string) error {
	const op = "dht.RemoteClient.Put"
	if nick == "" {
		nick = r.nick
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	_, err := r.node.Msg(key, "PUT", subkey, nick, encoded)
	if err != nil {
		return errors.E(op, err)
	}
	return nil
}

func (r *RemoteClient) Get(key id.ID, subkey string) ([]byte, error) {
	const op = "dht.RemoteClient.Get"
	groupKey := key.String() + ":" + subkey
	v, err, _ := r.group.Do(groupKey, func() (interface{}, error) {
		return r.node.Msg(key, "GET", subkey)
	})
	if err != nil {
		return nil, errors.E(op, err)
	}
	raw, err := base64.StdEncoding.DecodeString(v.(string))
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	return raw, nil
}
