// Package ws implements mcp.Transport over a WebSocket connection using
// gorilla/websocket, one JSON-RPC envelope per text frame (spec §4.2's
// framing invariant for message transports). Grounded on
// original_source/src/transport/websocket.rs, the Rust original's
// WebSocket transport, translated into the gorilla/websocket idiom.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	mcp "github.com/nkohen/mcpcore"
)

// Transport wraps a *websocket.Conn as an mcp.Transport. Binary frames
// are ignored per the framing invariant; only text frames are decoded.
type Transport struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	mu        sync.Mutex
	connected bool
}

// Wrap adapts an already-established *websocket.Conn, for server-side
// use after an http.Upgrader has completed the handshake.
func Wrap(conn *websocket.Conn) *Transport {
	return &Transport{conn: conn, connected: true}
}

var defaultDialer = websocket.DefaultDialer

// Dial opens a client-side WebSocket connection to url.
func Dial(ctx context.Context, url string, header http.Header) (*Transport, error) {
	conn, _, err := defaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, &mcp.TransportError{Op: "dial", Cause: err}
	}
	return &Transport{conn: conn, connected: true}, nil
}

// Connect is a no-op for an already-dialed or already-wrapped
// connection; it exists to satisfy mcp.Transport and is idempotent.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return &mcp.ConfigError{Reason: "ws transport: no connection to connect"}
	}
	t.connected = true
	return nil
}

// Disconnect closes the underlying WebSocket connection.
func (t *Transport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	t.connected = false
	t.mu.Unlock()
	if err := t.conn.Close(); err != nil {
		return &mcp.TransportError{Op: "disconnect", Cause: err}
	}
	return nil
}

// Send encodes msg and writes it as a single text frame.
func (t *Transport) Send(ctx context.Context, msg mcp.Message) error {
	if !t.IsConnected() {
		return &mcp.ConnectionClosedError{Reason: "websocket not connected"}
	}
	raw, err := mcp.Encode(msg)
	if err != nil {
		return &mcp.InternalError{Reason: "encode: " + err.Error()}
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return &mcp.TransportError{Op: "send", Cause: err}
	}
	return nil
}

// Receive blocks for the next text frame and decodes it, skipping any
// binary frames. It returns (nil, nil) on a clean close.
func (t *Transport) Receive(ctx context.Context) (mcp.Message, error) {
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, nil
			}
			return nil, &mcp.TransportError{Op: "receive", Cause: err}
		}
		if kind != websocket.TextMessage {
			continue
		}
		return mcp.Decode(data)
	}
}

// IsConnected reports observable liveness.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}
