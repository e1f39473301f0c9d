package ring

import (
	"sync"
	"time"

	"chordfs.io/errors"
	"chordfs.io/id"
	"chordfs.io/log"
)

// contactedCacheSize and contactedTTL bound the routing shortcut
// cache: spec's design notes flag an unbounded "contacted" cache as a
// source of routing loops once a cached peer has left the ring, so
// both a capacity and an age limit are enforced.
const (
	contactedCacheSize = 256
	contactedTTL       = 2 * time.Minute
	reJoinPause        = time.Second
)

// Node is one member of the ring. It is constructed with an explicit
// listener rather than reaching for a package-level singleton, so a
// process can run more than one ring (or none at all, in tests) side
// by side.
type Node struct {
	Self Peer

	mu   sync.RWMutex
	prev Peer
	next Peer

	contacted *contactedCache
	client    *Client
	listener  interface{}
}

// NewNode returns a ring node that is, initially, alone on its own
// ring: both prev and next point to itself. listener may be nil, or
// may implement any subset of MessageHandler, RoutingObserver,
// JoinObserver, and LeaveObserver.
func NewNode(self Peer, listener interface{}) *Node {
	n := &Node{
		Self:      self,
		prev:      self,
		next:      self,
		contacted: newContactedCache(contactedCacheSize, contactedTTL),
		client:    NewClient(),
		listener:  listener,
	}
	return n
}

// Prev and Next return the node's current predecessor and successor.
func (n *Node) Prev() Peer {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.prev
}

func (n *Node) Next() Peer {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.next
}

// Manage reports whether this node is responsible for target: the
// Chord "manage" predicate, true exactly on the interval [self, next).
// A node's range grows to absorb whatever its predecessor or a
// departed successor leaves behind purely by its next pointer moving;
// it never needs prev to decide ownership.
func (n *Node) Manage(target id.ID) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.next.ID == n.Self.ID {
		return true // alone on the ring; this node owns everything
	}
	return target.Equal(n.Self.ID) ||
		(!target.Equal(n.next.ID) && target.Between(n.Self.ID, n.next.ID))
}

// route picks the peer to forward a request for target to: a cached
// address if one is fresh, otherwise this node's successor, mirroring
// the reference router's __next helper.
func (n *Node) route(target id.ID) Peer {
	if p, ok := n.contacted.Get(target); ok {
		return p
	}
	return n.Next()
}

// Who returns the peer that owns target, routing the request forward
// through the ring if this node does not own it itself.
func (n *Node) Who(target id.ID) Peer {
	if n.Manage(target) {
		return n.Self
	}
	via := n.route(target)
	if via.ID == n.Self.ID {
		// Alone on the ring; nowhere left to forward to.
		return n.Self
	}
	if observer, ok := n.listener.(RoutingObserver); ok {
		observer.Routing(target, via)
	}
	owner, err := n.client.Who(via.Addr, target)
	if err != nil {
		log.Printf("ring: Who(%v) via %v: %v", target, via.Addr, err)
		n.contacted.Remove(target)
		return via
	}
	n.contacted.Add(target, owner)
	return owner
}

// Join adds this node to the ring reachable through known. It asks
// known for the current owner of its own id (its future predecessor),
// then asks that owner to splice it in; the owner answers with what
// its own successor was, which becomes this node's successor in turn.
// A predecessor change on the far side (this node's new successor
// still pointing its own prev at the old owner) is not actively
// fixed up here: ownership never consults prev, and that node's own
// next who_msg-style lookup routes around the staleness, the same
// tolerance the reference join protocol relies on.
func (n *Node) Join(known Peer) error {
	const op = "ring.Node.Join"
	owner, err := n.client.Who(known.Addr, n.Self.ID)
	if err != nil {
		return errors.E(op, errors.RoutingError, err)
	}
	oldNext, err := n.client.Join(owner.Addr, n.Self)
	if err != nil {
		return errors.E(op, errors.RoutingError, err)
	}
	n.mu.Lock()
	n.prev = owner
	n.next = oldNext
	n.mu.Unlock()
	return nil
}

// HandleJoin is invoked (via the RPC server) when a peer asks to
// become this node's new successor, splitting this node's managed
// range at joining's id. It sets this node's own next to joining and
// returns what next previously was, so the joiner can link forward.
func (n *Node) HandleJoin(joining Peer) (Peer, error) {
	n.mu.Lock()
	oldNext := n.next
	n.next = joining
	n.mu.Unlock()
	if observer, ok := n.listener.(JoinObserver); ok {
		observer.Joined(joining)
	}
	return oldNext, nil
}

// Leave removes this node from the ring by informing its predecessor:
// the predecessor's successor pointer moves forward to this node's
// own successor, directly splicing the two together.
func (n *Node) Leave() error {
	prev, next := n.Prev(), n.Next()
	if prev.ID == n.Self.ID && next.ID == n.Self.ID {
		return nil // alone on the ring
	}
	if prev.ID != n.Self.ID {
		if err := n.client.Leave(prev.Addr, n.Self, next); err != nil {
			return err
		}
	}
	return nil
}

// HandleLeave is invoked when a peer (ordinarily this node's
// successor) announces it is leaving, naming newNext as its own
// successor. If the leaving peer is indeed this node's immediate
// successor, the ring is spliced directly onto newNext. Otherwise --
// state has drifted, and the leaving peer is not who this node
// thought came next -- this node re-joins the ring through newNext
// after a short pause, the same recovery the reference ring performs
// rather than leaving its pointers stale.
func (n *Node) HandleLeave(leaving, newNext Peer) {
	next := n.Next()
	if leaving.ID != next.ID {
		go func() {
			time.Sleep(reJoinPause)
			if err := n.Join(newNext); err != nil {
				log.Printf("ring: re-join after unexpected leave_msg failed: %v", err)
			}
		}()
		return
	}
	n.mu.Lock()
	n.next = newNext
	n.mu.Unlock()
	if observer, ok := n.listener.(LeaveObserver); ok {
		observer.Left(leaving)
	}
}

// HandleMsg answers (or forwards) an application message addressed to
// the owner of target.
func (n *Node) HandleMsg(target id.ID, args ...string) (string, error) {
	const op = "ring.Node.HandleMsg"
	if n.Manage(target) {
		handler, ok := n.listener.(MessageHandler)
		if !ok {
			return "", errors.E(op, errors.Invalid, errors.Str("node has no message handler"))
		}
		return handler.Message(target, args...)
	}
	via := n.route(target)
	if observer, ok := n.listener.(RoutingObserver); ok {
		observer.Routing(target, via)
	}
	result, err := n.client.Msg(via.Addr, target, args...)
	if err != nil {
		n.contacted.Remove(target)
		return "", errors.E(op, errors.RoutingError, err)
	}
	return result, nil
}

// Msg sends an application message toward the owner of target,
// routing locally if this node already owns it.
func (n *Node) Msg(target id.ID, args ...string) (string, error) {
	return n.HandleMsg(target, args...)
}
