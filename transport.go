package mcp

import "context"

// Transport is the abstract bidirectional channel contract a session is
// built on (spec "Transport abstraction"). Implementations carry one
// decoded JSON-RPC envelope per frame — newline-delimited JSON for stream
// transports, one message per frame for message transports — and never
// correlate requests with responses; that is always the engine's job via
// the correlation table.
type Transport interface {
	// Connect establishes a full-duplex message channel. It is idempotent
	// when already connected.
	Connect(ctx context.Context) error

	// Disconnect half-closes the outbound direction and drains inbound,
	// guaranteeing that a blocked Receive returns (nil, nil) for clean
	// close or a *TransportError.
	Disconnect(ctx context.Context) error

	// Send delivers msg exactly once, or fails with a *TransportError or
	// *ConnectionClosedError. Ordering is preserved per direction.
	Send(ctx context.Context, msg Message) error

	// Receive produces the next decoded message, (nil, nil) on clean
	// close, or a *TransportError. A frame that does not decode yields
	// the codec's *ParseError or *ProtocolError, after which the channel
	// stays usable. It blocks until a frame arrives.
	Receive(ctx context.Context) (Message, error)

	// IsConnected reports the current observable liveness of the channel.
	IsConnected() bool
}
