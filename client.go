package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is the client-side protocol engine (spec "Client engine" C5):
// outbound request API, notification dispatch to the event stream, and
// the initialize handshake initiator. Constructed via ClientBuilder.
type Client struct {
	opts   ClientOptions
	sess   *session
	corr   *correlationTable
	events chan ClientEvent
	logger *zap.Logger

	receiveCancel context.CancelFunc
	receiveDone   chan struct{}
	closeOnce     sync.Once
}

func newClient(opts ClientOptions, events chan ClientEvent) *Client {
	return &Client{
		opts:   opts,
		sess:   newSession(),
		corr:   newCorrelationTable(),
		events: events,
		logger: opts.logger,
	}
}

// State reports the client's current connection state.
func (c *Client) State() ConnState {
	return c.sess.State()
}

// Connect starts the receive loop, performs the initialize handshake,
// and transitions the session to Initialized on success (spec §4.5
// "Connection lifecycle").
func (c *Client) Connect(ctx context.Context) error {
	c.sess.setState(StateConnecting)
	if err := c.opts.transport.Connect(ctx); err != nil {
		c.sess.setState(StateDisconnected)
		return &TransportError{Op: "connect", Cause: err}
	}

	receiveCtx, cancel := context.WithCancel(context.Background())
	c.receiveCancel = cancel
	c.receiveDone = make(chan struct{})
	go c.receiveLoop(receiveCtx)

	c.sess.setState(StateInitializing)

	result, err := doRequest[InitializeResult](c, ctx, MethodInitialize, InitializeParams{
		ProtocolVersion: ProtocolVersion,
		ClientInfo:      c.opts.identity,
		Capabilities:    c.opts.capabilities,
	})
	if err != nil {
		c.teardown("initialize failed: " + err.Error())
		return err
	}

	c.sess.setPeer(PeerInfo{
		Implementation:  result.ServerInfo,
		ProtocolVersion: result.ProtocolVersion,
		Instructions:    derefString(result.Instructions),
	})
	c.sess.setServerCaps(result.Capabilities)
	c.sess.setState(StateInitialized)

	if note, err := NewNotification(NotificationInitialized, nil); err == nil {
		_ = c.opts.transport.Send(ctx, note)
	}

	c.logger.Info("client initialized",
		zap.String("server", result.ServerInfo.Name),
		zap.String("protocolVersion", result.ProtocolVersion))

	c.events <- &EventConnected{
		ServerInfo:      result.ServerInfo,
		ProtocolVersion: result.ProtocolVersion,
		Capabilities:    result.Capabilities,
		Instructions:    result.Instructions,
		VersionMismatch: result.ProtocolVersion != ProtocolVersion,
	}
	return nil
}

// Disconnect closes the transport, stops the receive loop, and emits
// Disconnected with the reason "client disconnect".
func (c *Client) Disconnect(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		err = c.opts.transport.Disconnect(ctx)
		c.teardown("client disconnect")
	})
	return err
}

func (c *Client) teardown(reason string) {
	if c.receiveCancel != nil {
		c.receiveCancel()
	}
	c.corr.failAll(reason)
	c.sess.setState(StateDisconnected)
	select {
	case c.events <- &EventDisconnected{Reason: reason}:
	default:
		c.events <- &EventDisconnected{Reason: reason}
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (c *Client) nextID() ID {
	return NewStringID(uuid.NewString())
}

// requireState fails locally if the client is not ready to send method,
// enforcing spec §4.4's rule that only initialize may be sent before
// Initialized, and ping only after.
func (c *Client) requireState(method string) error {
	state := c.sess.State()
	if method == MethodInitialize {
		return nil
	}
	if state != StateInitialized {
		return &NotInitializedError{Method: method}
	}
	return nil
}

// RequestOption configures a single outbound request. The only option
// today is WithProgressToken; more can be added without touching every
// domain method's signature.
type RequestOption func(*requestOptions)

type requestOptions struct {
	progressToken *ID
}

// WithProgressToken attaches token to the outbound request's
// `params._meta.progressToken` (spec §3 "Progress token"), so that
// subsequent notifications/progress carrying the same token are
// delivered as EventProgress with RequestID populated.
func WithProgressToken(token ID) RequestOption {
	return func(o *requestOptions) { o.progressToken = &token }
}

// doRequest performs one request/response round trip and decodes the
// result into R; it is the generic dispatch helper every domain
// operation builds on, mirroring the teacher's generic handleApproval
// helper in spirit.
func doRequest[R any](c *Client, ctx context.Context, method string, params interface{}, opts ...RequestOption) (R, error) {
	var zero R
	if err := c.requireState(method); err != nil {
		return zero, err
	}

	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	paramsRaw, err := attachProgressToken(params, ro.progressToken)
	if err != nil {
		return zero, &InternalError{Reason: err.Error()}
	}

	id := c.nextID()
	req, err := NewRequest(id, method, paramsRaw)
	if err != nil {
		return zero, &InternalError{Reason: err.Error()}
	}

	slot, err := c.corr.register(id, method, c.opts.timeout, nil, ro.progressToken)
	if err != nil {
		return zero, err
	}

	if err := c.opts.transport.Send(ctx, req); err != nil {
		c.corr.cancel(id, "send failed")
		return zero, &TransportError{Op: "send", Cause: err}
	}

	raw, err := c.corr.await(ctx, slot)
	if err != nil {
		return zero, err
	}

	var result R
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return zero, &ParseError{Reason: fmt.Sprintf("decoding result of %s", method), Cause: err}
		}
	}
	return result, nil
}

func guardCapability(ok bool, feature string) error {
	if !ok {
		return &UnsupportedFeatureError{Feature: feature}
	}
	return nil
}

// ListResources calls resources/list.
func (c *Client) ListResources(ctx context.Context, cursor string, opts ...RequestOption) (ListResourcesResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasResources(), "resources"); err != nil {
		return ListResourcesResult{}, err
	}
	return doRequest[ListResourcesResult](c, ctx, MethodResourcesList, ListResourcesParams{Cursor: optionalString(cursor)}, opts...)
}

// ListResourceTemplates calls resources/templates/list.
func (c *Client) ListResourceTemplates(ctx context.Context, cursor string, opts ...RequestOption) (ListResourceTemplatesResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasResources(), "resources"); err != nil {
		return ListResourceTemplatesResult{}, err
	}
	return doRequest[ListResourceTemplatesResult](c, ctx, MethodResourcesTemplatesList, ListResourceTemplatesParams{Cursor: optionalString(cursor)}, opts...)
}

// ReadResource calls resources/read.
func (c *Client) ReadResource(ctx context.Context, uri string, opts ...RequestOption) (ReadResourceResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasResources(), "resources"); err != nil {
		return ReadResourceResult{}, err
	}
	return doRequest[ReadResourceResult](c, ctx, MethodResourcesRead, ReadResourceParams{URI: uri}, opts...)
}

// SubscribeResource calls resources/subscribe.
func (c *Client) SubscribeResource(ctx context.Context, uri string, opts ...RequestOption) error {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasResourcesSubscribe(), "resources.subscribe"); err != nil {
		return err
	}
	_, err := doRequest[EmptyResult](c, ctx, MethodResourcesSubscribe, SubscribeResourceParams{URI: uri}, opts...)
	return err
}

// UnsubscribeResource calls resources/unsubscribe.
func (c *Client) UnsubscribeResource(ctx context.Context, uri string, opts ...RequestOption) error {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasResourcesSubscribe(), "resources.subscribe"); err != nil {
		return err
	}
	_, err := doRequest[EmptyResult](c, ctx, MethodResourcesUnsubscribe, SubscribeResourceParams{URI: uri}, opts...)
	return err
}

// ListPrompts calls prompts/list.
func (c *Client) ListPrompts(ctx context.Context, cursor string, opts ...RequestOption) (ListPromptsResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasPrompts(), "prompts"); err != nil {
		return ListPromptsResult{}, err
	}
	return doRequest[ListPromptsResult](c, ctx, MethodPromptsList, ListPromptsParams{Cursor: optionalString(cursor)}, opts...)
}

// GetPrompt calls prompts/get.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string, opts ...RequestOption) (GetPromptResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasPrompts(), "prompts"); err != nil {
		return GetPromptResult{}, err
	}
	return doRequest[GetPromptResult](c, ctx, MethodPromptsGet, GetPromptParams{Name: name, Arguments: args}, opts...)
}

// ListTools calls tools/list.
func (c *Client) ListTools(ctx context.Context, cursor string, opts ...RequestOption) (ListToolsResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasTools(), "tools"); err != nil {
		return ListToolsResult{}, err
	}
	return doRequest[ListToolsResult](c, ctx, MethodToolsList, ListToolsParams{Cursor: optionalString(cursor)}, opts...)
}

// CallTool calls tools/call. A tool-level failure comes back as a
// successful CallToolResult with IsError set; it is not a Go error.
// Pass WithProgressToken to correlate notifications/progress back to
// this call via EventProgress.RequestID.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage, opts ...RequestOption) (CallToolResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasTools(), "tools"); err != nil {
		return CallToolResult{}, err
	}
	return doRequest[CallToolResult](c, ctx, MethodToolsCall, CallToolParams{Name: name, Arguments: args}, opts...)
}

// SetLoggingLevel calls logging/setLevel.
func (c *Client) SetLoggingLevel(ctx context.Context, level LogLevel, opts ...RequestOption) error {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasLogging(), "logging"); err != nil {
		return err
	}
	_, err := doRequest[EmptyResult](c, ctx, MethodLoggingSetLevel, SetLevelParams{Level: level}, opts...)
	return err
}

// GetCompletions calls completion/complete.
func (c *Client) GetCompletions(ctx context.Context, refType, refName, argName, argValue string, opts ...RequestOption) (CompleteResult, error) {
	caps, _ := c.sess.ServerCaps()
	if err := guardCapability(caps.hasCompletions(), "completions"); err != nil {
		return CompleteResult{}, err
	}
	ref := CompletionReference{Type: refType}
	switch refType {
	case "ref/resource":
		ref.URI = refName
	default:
		ref.Name = refName
	}
	return doRequest[CompleteResult](c, ctx, MethodCompletionComplete, CompleteParams{
		Ref:      ref,
		Argument: CompletionArgument{Name: argName, Value: argValue},
	}, opts...)
}

// ListRoots returns the roots the client would serve to a server asking
// for them, via the locally registered RootsHandler. There is no C→S
// wire method for this (roots/list is server-originated per §6); this is
// a local introspection accessor, not a network round trip.
func (c *Client) ListRoots(ctx *RequestContext) ([]Root, error) {
	if c.opts.rootsHandler == nil {
		return nil, nil
	}
	return c.opts.rootsHandler(ctx)
}

// Ping calls ping. Permitted only once Initialized.
func (c *Client) Ping(ctx context.Context) error {
	_, err := doRequest[map[string]interface{}](c, ctx, MethodPing, struct{}{})
	return err
}

// CancelRequest sends notifications/cancelled for id, removes its
// correlation slot, and delivers *CancelledError to the local waiter.
func (c *Client) CancelRequest(ctx context.Context, id ID, reason string) {
	method, ok := c.corr.cancel(id, reason)
	if !ok {
		return
	}
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	note, err := NewNotification(NotificationCancelled, CancelledParams{RequestID: id, Reason: reasonPtr})
	if err != nil {
		return
	}
	_ = c.opts.transport.Send(ctx, note)
	c.logger.Debug("cancelled request", zap.String("method", method), zap.String("id", id.String()))
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
