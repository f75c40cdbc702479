package mcp_test

import (
	"context"
	"sync"

	mcp "github.com/nkohen/mcpcore"
)

// pipeTransport is an in-memory Transport double connecting two engines
// under test through buffered channels, replacing the teacher's
// mock_transport_test.go double adapted to the new non-correlating
// Transport contract: it only ships messages, it never matches
// request/response pairs itself.
type pipeTransport struct {
	mu        sync.Mutex
	connected bool
	out       chan<- mcp.Message
	in        <-chan mcp.Message
}

// newPipeTransportPair builds two pipeTransports wired to each other: a
// message sent on one arrives on the other's Receive.
func newPipeTransportPair() (*pipeTransport, *pipeTransport) {
	ab := make(chan mcp.Message, 64)
	ba := make(chan mcp.Message, 64)
	a := &pipeTransport{out: ab, in: ba}
	b := &pipeTransport{out: ba, in: ab}
	return a, b
}

func (p *pipeTransport) Connect(ctx context.Context) error {
	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	return nil
}

func (p *pipeTransport) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	return nil
}

func (p *pipeTransport) Send(ctx context.Context, msg mcp.Message) error {
	p.mu.Lock()
	connected := p.connected
	p.mu.Unlock()
	if !connected {
		return &mcp.ConnectionClosedError{Reason: "pipe not connected"}
	}
	select {
	case p.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeTransport) Receive(ctx context.Context) (mcp.Message, error) {
	select {
	case msg, ok := <-p.in:
		if !ok {
			return nil, nil
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeTransport) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}
