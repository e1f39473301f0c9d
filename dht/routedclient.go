package dht

import (
	"encoding/base64"

	"chordfs.io/errors"
	"chordfs.io/id"
	"chordfs.io/ring"
)

// RoutedClient is a Store for a process that is not itself a ring
// member -- a one-shot CLI invocation, say -- and so has no address
// of its own to be routed back through. It looks up the current
// owner of a key via a bootstrap peer's Who, then talks to that owner
// directly, re-resolving on every call rather than caching a
// membership of its own.
type RoutedClient struct {
	bootstrap string
	client    *ring.Client
	nick      string
}

// NewRoutedClient returns a Store that reaches the ring through
// bootstrap, a known member's address, tagging writes with nick.
func NewRoutedClient(bootstrap, nick string) *RoutedClient {
	return &RoutedClient{bootstrap: bootstrap, client: ring.NewClient(), nick: nick}
}

var _ Store = (*RoutedClient)(nil)

func (c *RoutedClient) owner(key id.ID) (ring.Peer, error) {
	return c.client.Who(c.bootstrap, key)
}

func (c *RoutedClient) Put(key id.ID, subkey string, data []byte, nick string) error {
	const op = "dht.RoutedClient.Put"
	if nick == "" {
		nick = c.nick
	}
	owner, err := c.owner(key)
	if err != nil {
		return errors.E(op, err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if _, err := c.client.Msg(owner.Addr, key, "PUT", subkey, nick, encoded); err != nil {
		return errors.E(op, err)
	}
	return nil
}

func (c *RoutedClient) Get(key id.ID, subkey string) ([]byte, error) {
	const op = "dht.RoutedClient.Get"
	owner, err := c.owner(key)
	if err != nil {
		return nil, errors.E(op, err)
	}
	result, err := c.client.Msg(owner.Addr, key, "GET", subkey)
	if err != nil {
		return nil, errors.E(op, err)
	}
	raw, err := base64.StdEncoding.DecodeString(result)
	if err != nil {
		return nil, errors.E(op, errors.Invalid, err)
	}
	return raw, nil
}
