package mcp

import "sync"

// ConnState is a point in the per-peer session state machine (spec
// "Session state machine" C4).
type ConnState int

const (
	// StateDisconnected is both the initial and terminal state.
	StateDisconnected ConnState = iota
	// StateConnecting means the transport connection is in progress.
	StateConnecting
	// StateInitializing means the transport is up and the initialize
	// handshake is in flight.
	StateInitializing
	// StateInitialized means the handshake completed; the session is
	// ready for domain operations.
	StateInitialized
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	default:
		return "unknown"
	}
}

// PeerInfo holds what is learned about the remote side during handshake.
type PeerInfo struct {
	Implementation  Implementation
	ProtocolVersion string
	Instructions    string
}

// session is the shared mutable per-connection record: connection state,
// peer identity, and peer capabilities, guarded by a reader-writer lock
// so capability probes made while building outbound requests never
// contend with each other, only with the rare state transition during
// handshake or teardown.
type session struct {
	mu sync.RWMutex

	state ConnState

	peer           PeerInfo
	havePeer       bool
	clientCaps     ClientCapabilities
	serverCaps     ServerCapabilities
	haveClientCaps bool
	haveServerCaps bool

	// initialized gates all non-handshake inbound methods on the server
	// side; the client side uses state == StateInitialized instead.
	initialized bool

	// subscriptions is server-side only: the set of resource URIs this
	// peer has subscribed to, mutated only by the connection's own
	// router task.
	subscriptions map[string]struct{}
}

func newSession() *session {
	return &session{state: StateDisconnected, subscriptions: make(map[string]struct{})}
}

func (s *session) State() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *session) setState(state ConnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *session) setPeer(info PeerInfo) {
	s.mu.Lock()
	s.peer = info
	s.havePeer = true
	s.mu.Unlock()
}

func (s *session) Peer() (PeerInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peer, s.havePeer
}

func (s *session) setServerCaps(caps ServerCapabilities) {
	s.mu.Lock()
	s.serverCaps = caps
	s.haveServerCaps = true
	s.mu.Unlock()
}

// ServerCaps returns the cached server capabilities, used by the client
// engine to gate outbound domain operations.
func (s *session) ServerCaps() (ServerCapabilities, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverCaps, s.haveServerCaps
}

func (s *session) setClientCaps(caps ClientCapabilities) {
	s.mu.Lock()
	s.clientCaps = caps
	s.haveClientCaps = true
	s.mu.Unlock()
}

// ClientCaps returns the cached client capabilities, used by the server
// engine to gate inbound notification routing (e.g. roots list_changed).
func (s *session) ClientCaps() (ClientCapabilities, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCaps, s.haveClientCaps
}

func (s *session) setInitialized(v bool) {
	s.mu.Lock()
	s.initialized = v
	s.mu.Unlock()
}

func (s *session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *session) subscribe(uri string) {
	s.mu.Lock()
	s.subscriptions[uri] = struct{}{}
	s.mu.Unlock()
}

func (s *session) unsubscribe(uri string) {
	s.mu.Lock()
	delete(s.subscriptions, uri)
	s.mu.Unlock()
}

func (s *session) isSubscribed(uri string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.subscriptions[uri]
	return ok
}
