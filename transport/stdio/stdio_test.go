package stdio_test

import (
	"context"
	"io"
	"testing"
	"time"

	mcp "github.com/nkohen/mcpcore"
	"github.com/nkohen/mcpcore/transport/stdio"
)

// pipeWriteCloser adapts an io.Writer (the write end of an io.Pipe) into the
// io.WriteCloser the transport expects, closing the underlying pipe.
type pipeWriteCloser struct {
	*io.PipeWriter
}

func newLinkedTransports(t *testing.T) (*stdio.Transport, *stdio.Transport) {
	t.Helper()
	arRead, arWrite := io.Pipe()
	baRead, baWrite := io.Pipe()

	a := stdio.New(baRead, pipeWriteCloser{arWrite})
	b := stdio.New(arRead, pipeWriteCloser{baWrite})
	return a, b
}

func TestStdioSendReceiveRoundTrip(t *testing.T) {
	a, b := newLinkedTransports(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := a.Connect(ctx); err != nil {
		t.Fatalf("a.Connect: %v", err)
	}
	if err := b.Connect(ctx); err != nil {
		t.Fatalf("b.Connect: %v", err)
	}

	req, err := mcp.NewRequest(mcp.NewStringID("1"), mcp.MethodPing, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- a.Send(ctx, req)
	}()

	msg, err := b.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Send: %v", err)
	}

	got, ok := msg.(*mcp.Request)
	if !ok {
		t.Fatalf("expected *Request, got %T", msg)
	}
	if got.Method != mcp.MethodPing {
		t.Errorf("method = %q", got.Method)
	}
}

func TestStdioDisconnectClosesWriter(t *testing.T) {
	a, b := newLinkedTransports(t)
	ctx := context.Background()
	if err := a.Connect(ctx); err != nil {
		t.Fatalf("a.Connect: %v", err)
	}
	if err := b.Connect(ctx); err != nil {
		t.Fatalf("b.Connect: %v", err)
	}

	if err := a.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if a.IsConnected() {
		t.Error("expected IsConnected false after Disconnect")
	}

	// With a's write end closed, b's Receive observes a clean EOF.
	msg, err := b.Receive(ctx)
	if err != nil || msg != nil {
		t.Errorf("b.Receive after a.Disconnect = (%v, %v), want (nil, nil)", msg, err)
	}
}
