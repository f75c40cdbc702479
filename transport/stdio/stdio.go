// Package stdio implements mcp.Transport over newline-delimited JSON on
// an io.Reader/io.WriteCloser pair, typically the stdin/stdout of a
// spawned child-process MCP server. It is grounded on the teacher's
// stdio.go (bufio.Scanner read loop, sync.Once-guarded shutdown) and on
// dmora-agentrun's engine/acp subprocess wiring (exec.Cmd with piped
// stdin/stdout). Unlike the teacher's StdioTransport, this transport
// never matches responses to requests itself — it only frames and
// forwards; correlation lives in the engine.
package stdio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	mcp "github.com/nkohen/mcpcore"
)

// Transport is a newline-delimited-JSON mcp.Transport over a reader and
// a write-closer, optionally owning a child process it should kill on
// Disconnect.
type Transport struct {
	reader io.Reader
	writer io.WriteCloser
	cmd    *exec.Cmd

	scanner *bufio.Scanner
	writeMu sync.Mutex

	mu        sync.Mutex
	connected bool
	closeOnce sync.Once
}

// New wraps an already-open reader/writer pair, for talking to a peer
// over pipes the caller manages directly.
func New(r io.Reader, w io.WriteCloser) *Transport {
	return &Transport{reader: r, writer: w}
}

// Dial spawns name with args as a child process and wires its stdin and
// stdout as the transport's write and read ends. Stderr is left attached
// to the parent's for diagnostics, matching the teacher's approach of
// not swallowing the child's error stream.
func Dial(ctx context.Context, name string, args ...string) (*Transport, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdio transport: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdio transport: stdout pipe: %w", err)
	}
	return &Transport{reader: stdout, writer: stdin, cmd: cmd}, nil
}

// Connect starts the child process, if one was spawned via Dial. It is
// idempotent when already connected; wrapping an existing pipe pair with
// New requires no separate connect step beyond marking liveness.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connected {
		return nil
	}
	if t.cmd != nil {
		if err := t.cmd.Start(); err != nil {
			return &mcp.TransportError{Op: "connect", Cause: err}
		}
	}
	t.scanner = bufio.NewScanner(t.reader)
	t.scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	t.connected = true
	return nil
}

// Disconnect closes the write end, which for a spawned child will signal
// EOF on its stdin; Receive then observes clean close once the child's
// stdout closes.
func (t *Transport) Disconnect(ctx context.Context) error {
	var err error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		err = t.writer.Close()
		if t.cmd != nil && t.cmd.Process != nil {
			_ = t.cmd.Wait()
		}
	})
	return err
}

// Send writes msg as one JSON object followed by a newline.
func (t *Transport) Send(ctx context.Context, msg mcp.Message) error {
	if !t.IsConnected() {
		return &mcp.ConnectionClosedError{Reason: "stdio transport not connected"}
	}
	raw, err := mcp.Encode(msg)
	if err != nil {
		return &mcp.InternalError{Reason: "encode: " + err.Error()}
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.writer.Write(append(raw, '\n')); err != nil {
		return &mcp.TransportError{Op: "send", Cause: err}
	}
	return nil
}

// Receive reads the next newline-delimited JSON frame and decodes it.
// Binary frames are not a concept on this transport; every line is
// treated as one JSON-RPC envelope. Returns (nil, nil) on clean EOF.
func (t *Transport) Receive(ctx context.Context) (mcp.Message, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, &mcp.TransportError{Op: "receive", Cause: err}
		}
		return nil, nil
	}
	line := t.scanner.Bytes()
	if len(line) == 0 {
		return t.Receive(ctx)
	}
	msg, err := mcp.Decode(line)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// IsConnected reports observable liveness.
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}
