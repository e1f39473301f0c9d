package ring

import "chordfs.io/id"

// Listener is deliberately not one interface: a Node accepts any
// combination of these, probing for each with a type assertion when
// the corresponding event happens. A DHT server adapter typically
// implements only MessageHandler; a test harness might implement only
// JoinObserver and LeaveObserver to track membership churn. None are
// required — a Node with no listener at all still routes and
// maintains ring membership.

// MessageHandler answers application-level messages forwarded to this
// node because it owns (or, mid-routing, is forwarding toward the
// owner of) the target identifier.
type MessageHandler interface {
	Message(to id.ID, args ...string) (string, error)
}

// RoutingObserver is notified every time this node forwards a message
// toward another peer instead of handling it locally.
type RoutingObserver interface {
	Routing(to id.ID, via Peer)
}

// JoinObserver is notified when a new peer joins between this node
// and its successor, becoming this node's new successor.
type JoinObserver interface {
	Joined(p Peer)
}

// LeaveObserver is notified when this node's successor leaves the
// ring and this node splices onto the leaver's successor.
type LeaveObserver interface {
	Left(p Peer)
}
