package ring

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/net/netutil"

	"chordfs.io/errors"
	"chordfs.io/id"
)

// This module's ring RPC surface -- who_msg, join_msg, leave_msg, msg,
// and id_msg -- was XML-RPC over HTTP in the system this package is
// modeled on. No Go XML-RPC client or server exists anywhere in this
// workspace's dependency corpus, so the wire encoding is redesigned as
// JSON over plain HTTP: a small named-method dispatch table shaped
// exactly like rpc.Service{Name, Methods} elsewhere in this module's
// ancestry, serving encoding/json bodies instead of protobuf ones.

// Method names, used both as URL path suffixes and dispatch keys.
const (
	methodWho   = "who"
	methodJoin  = "join"
	methodLeave = "leave"
	methodMsg   = "msg"
	methodID    = "id"
)

type whoRequest struct{ ID string }
type whoResponse struct {
	ID   string
	Addr string
}

type joinRequest struct {
	ID   string
	Addr string
}
type joinResponse struct {
	NextID   string
	NextAddr string
}

type leaveRequest struct {
	ID       string
	Addr     string
	NextID   string
	NextAddr string
}

type msgRequest struct {
	To   string
	Args []string
}
type msgResponse struct {
	Result string
}

type idResponse struct {
	ID string
}

// errorResponse carries a fully-typed errors.Error across the wire
// (base64-encoded via errors.MarshalError), so a Kind such as
// NoReference survives a round trip through the ring's RPC surface
// instead of flattening into an opaque routing failure.
type errorResponse struct {
	Error  string
	Marshaled string
}

// Client dials another ring node's RPC surface.
type Client struct {
	HTTP *http.Client
}

// NewClient returns a Client with a bounded-timeout HTTP transport,
// suitable for the many concurrent short-lived calls a busy ring node
// makes while routing.
func NewClient() *Client {
	return &Client{HTTP: &http.Client{Timeout: 5 * time.Second}}
}

func (c *Client) call(addr, method string, req, resp interface{}) error {
	op := "ring.Client." + method
	body, err := json.Marshal(req)
	if err != nil {
		return errors.E(op, errors.Invalid, err)
	}
	url := fmt.Sprintf("http://%s/api/ring/%s", addr, method)
	httpResp, err := c.HTTP.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.E(op, addr, errors.RoutingError, err)
	}
	defer httpResp.Body.Close()
	dec := json.NewDecoder(httpResp.Body)
	if httpResp.StatusCode != http.StatusOK {
		var errResp errorResponse
		dec.Decode(&errResp)
		if errResp.Marshaled != "" {
			if raw, decErr := base64.StdEncoding.DecodeString(errResp.Marshaled); decErr == nil {
				return errors.E(op, addr, errors.UnmarshalError(raw))
			}
		}
		return errors.E(op, addr, errors.RoutingError, errors.Str(errResp.Error))
	}
	if resp == nil {
		return nil
	}
	if err := dec.Decode(resp); err != nil {
		return errors.E(op, addr, errors.IO, err)
	}
	return nil
}

// Who asks the peer at addr which node owns the given identifier.
func (c *Client) Who(addr string, target id.ID) (Peer, error) {
	var resp whoResponse
	if err := c.call(addr, methodWho, whoRequest{ID: target.String()}, &resp); err != nil {
		return Peer{}, err
	}
	pid, err := id.Parse(resp.ID)
	if err != nil {
		return Peer{}, errors.E("ring.Client.Who", addr, errors.RoutingError, err)
	}
	return Peer{ID: pid, Addr: resp.Addr}, nil
}

// Join asks the peer at addr to accept self as its new successor,
// splitting its managed range at self's id. It returns what addr's
// successor previously was, so self can link forward to it.
func (c *Client) Join(addr string, self Peer) (Peer, error) {
	var resp joinResponse
	req := joinRequest{ID: self.ID.String(), Addr: self.Addr}
	if err := c.call(addr, methodJoin, req, &resp); err != nil {
		return Peer{}, err
	}
	nid, err := id.Parse(resp.NextID)
	if err != nil {
		return Peer{}, errors.E("ring.Client.Join", addr, errors.RoutingError, err)
	}
	return Peer{ID: nid, Addr: resp.NextAddr}, nil
}

// Leave tells the peer at addr that self is leaving the ring and that
// next is self's successor, the node that should take self's place.
func (c *Client) Leave(addr string, self, next Peer) error {
	req := leaveRequest{
		ID: self.ID.String(), Addr: self.Addr,
		NextID: next.ID.String(), NextAddr: next.Addr,
	}
	return c.call(addr, methodLeave, req, nil)
}

// Msg forwards an application message toward the owner of to,
// routed through the peer at addr.
func (c *Client) Msg(addr string, to id.ID, args ...string) (string, error) {
	var resp msgResponse
	req := msgRequest{To: to.String(), Args: args}
	if err := c.call(addr, methodMsg, req, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}

// ID asks the peer at addr for its identifier.
func (c *Client) ID(addr string) (id.ID, error) {
	var resp idResponse
	if err := c.call(addr, methodID, struct{}{}, &resp); err != nil {
		return id.Zero, err
	}
	pid, err := id.Parse(resp.ID)
	if err != nil {
		return id.Zero, errors.E("ring.Client.ID", addr, errors.RoutingError, err)
	}
	return pid, nil
}

// Server exposes a Node's RPC surface over HTTP.
type Server struct {
	node *Node
	mux  *http.ServeMux
}

// NewServer builds the HTTP handler for node's RPC surface. Responses
// are gzip-compressed the way rpc responses are elsewhere in this
// module, since descriptor and part payloads compress well.
func NewServer(node *Node) *Server {
	s := &Server{node: node, mux: http.NewServeMux()}
	s.mux.HandleFunc("/api/ring/"+methodWho, s.handleWho)
	s.mux.HandleFunc("/api/ring/"+methodJoin, s.handleJoin)
	s.mux.HandleFunc("/api/ring/"+methodLeave, s.handleLeave)
	s.mux.HandleFunc("/api/ring/"+methodMsg, s.handleMsg)
	s.mux.HandleFunc("/api/ring/"+methodID, s.handleID)
	return s
}

// Handler returns the gzip-wrapped http.Handler to mount or serve.
func (s *Server) Handler() http.Handler {
	return gziphandler.GzipHandler(s.mux)
}

// ListenAndServe serves the RPC surface on addr, bounding the number
// of simultaneously open connections so a slow or hostile peer can't
// exhaust this node's file descriptors while many routing calls are
// in flight (the concurrency model a single peer's RPC handlers run
// under places no a priori bound on that number).
func (s *Server) ListenAndServe(addr string, maxConns int) error {
	const op = "ring.Server.ListenAndServe"
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.E(op, addr, errors.IO, err)
	}
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}
	return http.Serve(ln, s.Handler())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	writeJSON(w, errorResponse{
		Error:     err.Error(),
		Marshaled: base64.StdEncoding.EncodeToString(errors.MarshalError(err)),
	})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleWho(w http.ResponseWriter, r *http.Request) {
	var req whoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	target, err := id.Parse(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	owner := s.node.Who(target)
	writeJSON(w, whoResponse{ID: owner.ID.String(), Addr: owner.Addr})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pid, err := id.Parse(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	next, err := s.node.HandleJoin(Peer{ID: pid, Addr: req.Addr})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, joinResponse{NextID: next.ID.String(), NextAddr: next.Addr})
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	pid, err := id.Parse(req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	nid, err := id.Parse(req.NextID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.node.HandleLeave(Peer{ID: pid, Addr: req.Addr}, Peer{ID: nid, Addr: req.NextAddr})
	writeJSON(w, struct{}{})
}

func (s *Server) handleMsg(w http.ResponseWriter, r *http.Request) {
	var req msgRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	target, err := id.Parse(req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.node.HandleMsg(target, req.Args...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, msgResponse{Result: result})
}

func (s *Server) handleID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, idResponse{ID: s.node.Self.ID.String()})
}
