package mcp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConnectionSender is what an acceptor (a WebSocket server, a stdio
// listener, anything driving one session per inbound connection)
// supplies to the Server so it can push notifications and
// server-initiated requests to that specific peer. The Server never
// binds a transport directly (spec §4.6).
type ConnectionSender interface {
	Send(ctx context.Context, msg Message) error
}

type serverConnection struct {
	id     string
	sess   *session
	sender ConnectionSender
	corr   *correlationTable
}

// Server is the server-side protocol engine (spec "Server engine" C6):
// inbound request router, capability gating, initialize handshake
// responder, and per-connection state. It does not bind a transport
// directly; an acceptor drives one session per inbound connection via
// AddConnection / RemoveConnection / HandleMessage.
type Server struct {
	opts ServerOptions

	mu    sync.RWMutex
	conns map[string]*serverConnection
}

func newServer(opts ServerOptions) *Server {
	if opts.timeout == 0 {
		opts.timeout = DefaultTimeout
	}
	return &Server{opts: opts, conns: make(map[string]*serverConnection)}
}

// AddConnection registers a new inbound connection, transitioning its
// session to Connecting immediately and Initializing once an initialize
// request is handled (spec §4.4's states apply per connection on the
// server side too).
func (s *Server) AddConnection(id string, sender ConnectionSender) {
	conn := &serverConnection{id: id, sess: newSession(), sender: sender, corr: newCorrelationTable()}
	conn.sess.setState(StateConnecting)

	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()
}

// RemoveConnection tears down a connection: fails all of its outstanding
// server-initiated requests with ConnectionClosed and notifies the
// handler via ConnectionObserver if implemented.
func (s *Server) RemoveConnection(id string, reason string) {
	s.mu.Lock()
	conn, ok := s.conns[id]
	if ok {
		delete(s.conns, id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	conn.corr.failAll(reason)
	conn.sess.setState(StateDisconnected)

	if obs, ok := asConnectionObserver(s.opts.handler); ok {
		obs.ClientDisconnected(s.requestContext(conn), reason)
	}
}

func (s *Server) connection(id string) (*serverConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conn, ok := s.conns[id]
	return conn, ok
}

func (s *Server) requestContext(conn *serverConnection) *RequestContext {
	peer, _ := conn.sess.Peer()
	clientCaps, _ := conn.sess.ClientCaps()
	return &RequestContext{
		ConnectionID:     conn.id,
		Initialized:      conn.sess.Initialized(),
		PeerInfo:         peer,
		PeerCapabilities: clientCaps,
		ServerOptions:    s.opts,
	}
}

// HandleMessage processes one inbound decoded message for connection id.
// For a Request it returns the Response or ErrorResponse the acceptor
// must send back; for a Notification, Response or ErrorResponse it
// returns nil; for a BatchRequest it returns a BatchResponse holding the
// replies to its request elements, or nil when no element produced a
// reply. There is no stubbed branch anywhere in this routing
// table: every gated method reaches the registered ServiceHandler (spec
// §9 open question #3, resolved).
func (s *Server) HandleMessage(ctx context.Context, id string, msg Message) (Message, error) {
	conn, ok := s.connection(id)
	if !ok {
		return nil, &InternalError{Reason: "unknown connection: " + id}
	}

	switch m := msg.(type) {
	case *Request:
		return s.handleRequest(ctx, conn, m), nil
	case *Notification:
		s.handleNotification(ctx, conn, m)
		return nil, nil
	case BatchRequest:
		responses := make(BatchResponse, 0, len(m))
		for _, elem := range m {
			reply, err := s.HandleMessage(ctx, id, elem)
			if err != nil {
				return nil, err
			}
			if reply != nil {
				responses = append(responses, reply)
			}
		}
		if len(responses) == 0 {
			return nil, nil
		}
		return responses, nil
	case *Response, *ErrorResponse:
		s.handleReply(conn, m)
		return nil, nil
	default:
		return nil, &ProtocolError{Reason: "unexpected message shape from client"}
	}
}

func (s *Server) handleReply(conn *serverConnection, msg Message) {
	switch m := msg.(type) {
	case *Response:
		if !conn.corr.complete(m.ID, m.Result, nil) {
			s.opts.logger.Warn("late or duplicate reply from client", zap.String("id", m.ID.String()))
		}
	case *ErrorResponse:
		if !conn.corr.complete(m.ID, nil, m.Error) {
			s.opts.logger.Warn("late or duplicate error reply from client", zap.String("id", m.ID.String()))
		}
	}
}

func (s *Server) errorResponse(reqID ID, code int, message string) Message {
	resp, _ := NewErrorResponse(reqID, code, message, nil)
	return resp
}

func (s *Server) okResponse(reqID ID, result interface{}) Message {
	resp, err := NewResponse(reqID, result)
	if err != nil {
		return s.errorResponse(reqID, ErrCodeInternalError, err.Error())
	}
	return resp
}

// SendLog pushes notifications/message to connection id if the server
// advertised logging.
func (s *Server) SendLog(ctx context.Context, id string, level LogLevel, logger *string, data []byte) error {
	conn, err := s.requireConn(id)
	if err != nil {
		return err
	}
	if err := guardCapability(s.opts.capabilities.hasLogging(), "logging"); err != nil {
		return err
	}
	note, err := NewNotification(NotificationMessage, LogMessageParams{Level: level, Logger: logger, Data: data})
	if err != nil {
		return err
	}
	return conn.sender.Send(ctx, note)
}

// NotifyResourcesChanged pushes notifications/resources/list_changed.
func (s *Server) NotifyResourcesChanged(ctx context.Context, id string) error {
	conn, err := s.requireConn(id)
	if err != nil {
		return err
	}
	if err := guardCapability(s.opts.capabilities.hasResourcesListChanged(), "resources.listChanged"); err != nil {
		return err
	}
	note, _ := NewNotification(NotificationResourcesListChanged, nil)
	return conn.sender.Send(ctx, note)
}

// NotifyResourceUpdated pushes notifications/resources/updated for uri.
func (s *Server) NotifyResourceUpdated(ctx context.Context, id string, uri string) error {
	conn, err := s.requireConn(id)
	if err != nil {
		return err
	}
	if err := guardCapability(s.opts.capabilities.hasResourcesSubscribe(), "resources.subscribe"); err != nil {
		return err
	}
	note, _ := NewNotification(NotificationResourcesUpdated, ResourceUpdatedParams{URI: uri})
	return conn.sender.Send(ctx, note)
}

// NotifyPromptsChanged pushes notifications/prompts/list_changed.
func (s *Server) NotifyPromptsChanged(ctx context.Context, id string) error {
	conn, err := s.requireConn(id)
	if err != nil {
		return err
	}
	if err := guardCapability(s.opts.capabilities.hasPromptsListChanged(), "prompts.listChanged"); err != nil {
		return err
	}
	note, _ := NewNotification(NotificationPromptsListChanged, nil)
	return conn.sender.Send(ctx, note)
}

// NotifyToolsChanged pushes notifications/tools/list_changed.
func (s *Server) NotifyToolsChanged(ctx context.Context, id string) error {
	conn, err := s.requireConn(id)
	if err != nil {
		return err
	}
	if err := guardCapability(s.opts.capabilities.hasToolsListChanged(), "tools.listChanged"); err != nil {
		return err
	}
	note, _ := NewNotification(NotificationToolsListChanged, nil)
	return conn.sender.Send(ctx, note)
}

// SendProgress pushes notifications/progress for a previously received
// progress token.
func (s *Server) SendProgress(ctx context.Context, id string, token ID, progress float64, total *float64, message *string) error {
	conn, err := s.requireConn(id)
	if err != nil {
		return err
	}
	note, _ := NewNotification(NotificationProgress, ProgressParams{ProgressToken: token, Progress: progress, Total: total, Message: message})
	return conn.sender.Send(ctx, note)
}

// CancelRequest cancels a server-initiated request still awaiting reply
// (e.g. a previous RequestRoots call) and notifies the peer.
func (s *Server) CancelRequest(ctx context.Context, id string, requestID ID, reason string) error {
	conn, err := s.requireConn(id)
	if err != nil {
		return err
	}
	method, ok := conn.corr.cancel(requestID, reason)
	if !ok {
		return nil
	}
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	note, _ := NewNotification(NotificationCancelled, CancelledParams{RequestID: requestID, Reason: reasonPtr})
	s.opts.logger.Debug("server cancelled request", zap.String("method", method))
	return conn.sender.Send(ctx, note)
}

// RequestRoots sends a server-to-client roots/list request and awaits
// the reply, gated on the peer having advertised the roots capability.
func (s *Server) RequestRoots(ctx context.Context, id string) (ListRootsResult, error) {
	conn, err := s.requireConn(id)
	if err != nil {
		return ListRootsResult{}, err
	}
	clientCaps, have := conn.sess.ClientCaps()
	if !have || !clientCaps.HasRoots() {
		return ListRootsResult{}, &UnsupportedFeatureError{Feature: "roots"}
	}

	reqID := NewStringID(uuid.NewString())
	req, err := NewRequest(reqID, MethodRootsList, nil)
	if err != nil {
		return ListRootsResult{}, err
	}
	slot, err := conn.corr.register(reqID, MethodRootsList, s.opts.timeout, nil, nil)
	if err != nil {
		return ListRootsResult{}, err
	}
	if err := conn.sender.Send(ctx, req); err != nil {
		conn.corr.cancel(reqID, "send failed")
		return ListRootsResult{}, &TransportError{Op: "send", Cause: err}
	}
	raw, err := conn.corr.await(ctx, slot)
	if err != nil {
		return ListRootsResult{}, err
	}
	var result ListRootsResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return ListRootsResult{}, &ParseError{Reason: "decoding roots/list result", Cause: err}
		}
	}
	return result, nil
}

func (s *Server) requireConn(id string) (*serverConnection, error) {
	conn, ok := s.connection(id)
	if !ok {
		return nil, &InternalError{Reason: "unknown connection: " + id}
	}
	return conn, nil
}
