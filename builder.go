package mcp

import (
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the default deadline for an outbound request awaiting
// a reply, applied unless a builder overrides it.
const DefaultTimeout = 30 * time.Second

// SamplingHandler answers a server-issued sampling/createMessage request.
// The application supplies this during client builder configuration;
// without one, sampling requests are rejected with -32601 even when the
// client advertised the capability.
type SamplingHandler func(ctx *RequestContext, params CreateMessageParams) (CreateMessageResult, error)

// RootsHandler supplies the client's current roots list in response to a
// server-issued roots/list request, overriding the default empty-list
// auto-acknowledge behavior.
type RootsHandler func(ctx *RequestContext) ([]Root, error)

// ClientOptions is the options struct a ClientOption mutates, matching
// the teacher's functional-option pattern (client.go's ClientOption
// func(*Client)) generalized to accumulate into a builder instead of a
// live engine.
type ClientOptions struct {
	identity                    Implementation
	capabilities                ClientCapabilities
	timeout                     time.Duration
	transport                   Transport
	logger                      *zap.Logger
	autoAcknowledgeRootsChanged bool
	rootsHandler                RootsHandler
	samplingHandler             SamplingHandler
	eventBufferSize             int
}

// ClientOption configures a ClientBuilder.
type ClientOption func(*ClientOptions)

// WithTransport binds the transport the client will connect over.
func WithTransport(t Transport) ClientOption {
	return func(o *ClientOptions) { o.transport = t }
}

// WithCapabilities sets the capability set the client offers during
// handshake.
func WithCapabilities(caps ClientCapabilities) ClientOption {
	return func(o *ClientOptions) { o.capabilities = caps }
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *ClientOptions) { o.timeout = d }
}

// WithLogger injects a structured logger; without one, logging is a
// no-op.
func WithLogger(l *zap.Logger) ClientOption {
	return func(o *ClientOptions) { o.logger = l }
}

// WithAutoAcknowledgeRootsChanged controls whether the client answers a
// server-issued roots/list request with an empty list automatically when
// no RootsHandler is registered. Defaults to true.
func WithAutoAcknowledgeRootsChanged(v bool) ClientOption {
	return func(o *ClientOptions) { o.autoAcknowledgeRootsChanged = v }
}

// WithRootsHandler registers the callback that supplies the client's
// current roots when the server asks for them.
func WithRootsHandler(h RootsHandler) ClientOption {
	return func(o *ClientOptions) { o.rootsHandler = h }
}

// WithSamplingHandler registers the callback that answers
// sampling/createMessage requests from the server.
func WithSamplingHandler(h SamplingHandler) ClientOption {
	return func(o *ClientOptions) { o.samplingHandler = h }
}

// WithEventBufferSize overrides the event channel's buffer capacity.
func WithEventBufferSize(n int) ClientOption {
	return func(o *ClientOptions) { o.eventBufferSize = n }
}

// ClientBuilder fluently accumulates ClientOptions before producing a
// Client and its event stream (spec §4.8 "Builders").
type ClientBuilder struct {
	opts ClientOptions
}

// NewClientBuilder starts a ClientBuilder for the given implementation
// identity, with defaults: 30s timeout, auto-acknowledge roots changed
// on, a 64-entry event buffer, and a no-op logger.
func NewClientBuilder(identity Implementation) *ClientBuilder {
	return &ClientBuilder{opts: ClientOptions{
		identity:                    identity,
		timeout:                     DefaultTimeout,
		autoAcknowledgeRootsChanged: true,
		eventBufferSize:             64,
		logger:                      zap.NewNop(),
	}}
}

// With applies one or more ClientOptions.
func (b *ClientBuilder) With(opts ...ClientOption) *ClientBuilder {
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// WithTransport binds the transport used on Build.
func (b *ClientBuilder) WithTransport(t Transport) *ClientBuilder {
	WithTransport(t)(&b.opts)
	return b
}

// WithCapabilities sets the offered client capabilities.
func (b *ClientBuilder) WithCapabilities(caps ClientCapabilities) *ClientBuilder {
	WithCapabilities(caps)(&b.opts)
	return b
}

// WithTimeout overrides the default per-request timeout.
func (b *ClientBuilder) WithTimeout(d time.Duration) *ClientBuilder {
	WithTimeout(d)(&b.opts)
	return b
}

// WithLogger injects a structured logger.
func (b *ClientBuilder) WithLogger(l *zap.Logger) *ClientBuilder {
	WithLogger(l)(&b.opts)
	return b
}

// WithSamplingHandler registers the sampling callback.
func (b *ClientBuilder) WithSamplingHandler(h SamplingHandler) *ClientBuilder {
	WithSamplingHandler(h)(&b.opts)
	return b
}

// WithRootsHandler registers the roots-list callback.
func (b *ClientBuilder) WithRootsHandler(h RootsHandler) *ClientBuilder {
	WithRootsHandler(h)(&b.opts)
	return b
}

// Build validates the accumulated options and constructs a Client and
// its event-stream receiver. It fails with *ConfigError if no transport
// was bound.
func (b *ClientBuilder) Build() (*Client, <-chan ClientEvent, error) {
	if b.opts.transport == nil {
		return nil, nil, &ConfigError{Reason: "client builder: no transport bound"}
	}
	events := make(chan ClientEvent, b.opts.eventBufferSize)
	c := newClient(b.opts, events)
	return c, events, nil
}

// ServerOptions is the options struct a ServerOption mutates.
type ServerOptions struct {
	identity      Implementation
	capabilities  ServerCapabilities
	instructions  *string
	timeout       time.Duration
	logger        *zap.Logger
	handler       ServiceHandler
}

// ServerOption configures a ServerBuilder.
type ServerOption func(*ServerOptions)

// WithServerCapabilities sets the capability set the server advertises.
func WithServerCapabilities(caps ServerCapabilities) ServerOption {
	return func(o *ServerOptions) { o.capabilities = caps }
}

// WithInstructions sets the free-form instructions string returned in
// the initialize response.
func WithInstructions(s string) ServerOption {
	return func(o *ServerOptions) { o.instructions = &s }
}

// WithServerTimeout overrides the default per-request timeout used for
// server-initiated requests (e.g. S→C roots/list).
func WithServerTimeout(d time.Duration) ServerOption {
	return func(o *ServerOptions) { o.timeout = d }
}

// WithServerLogger injects a structured logger.
func WithServerLogger(l *zap.Logger) ServerOption {
	return func(o *ServerOptions) { o.logger = l }
}

// ServerBuilder fluently accumulates ServerOptions before producing a
// Server bound to a ServiceHandler.
type ServerBuilder struct {
	opts ServerOptions
}

// NewServerBuilder starts a ServerBuilder for the given implementation
// identity and the handler that will service requests.
func NewServerBuilder(identity Implementation, handler ServiceHandler) *ServerBuilder {
	return &ServerBuilder{opts: ServerOptions{
		identity: identity,
		handler:  handler,
		timeout:  DefaultTimeout,
		logger:   zap.NewNop(),
	}}
}

// With applies one or more ServerOptions.
func (b *ServerBuilder) With(opts ...ServerOption) *ServerBuilder {
	for _, opt := range opts {
		opt(&b.opts)
	}
	return b
}

// WithCapabilities sets the advertised server capabilities.
func (b *ServerBuilder) WithCapabilities(caps ServerCapabilities) *ServerBuilder {
	WithServerCapabilities(caps)(&b.opts)
	return b
}

// WithInstructions sets the handshake instructions string.
func (b *ServerBuilder) WithInstructions(s string) *ServerBuilder {
	WithInstructions(s)(&b.opts)
	return b
}

// WithLogger injects a structured logger.
func (b *ServerBuilder) WithLogger(l *zap.Logger) *ServerBuilder {
	WithServerLogger(l)(&b.opts)
	return b
}

// Build validates the accumulated options and constructs a Server. It
// fails with *ConfigError if no handler was supplied.
func (b *ServerBuilder) Build() (*Server, error) {
	if b.opts.handler == nil {
		return nil, &ConfigError{Reason: "server builder: no service handler bound"}
	}
	return newServer(b.opts), nil
}
