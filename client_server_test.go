package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcp "github.com/nkohen/mcpcore"
)

type stubHandler struct {
	tools []mcp.Tool
}

func (h *stubHandler) HandleRequest(ctx *mcp.RequestContext, req mcp.ServiceRequest) (mcp.ServiceResponse, error) {
	switch r := req.(type) {
	case mcp.ListToolsParams:
		return mcp.ListToolsResult{Tools: h.tools}, nil
	case mcp.CallToolParams:
		if r.Name == "search" {
			return mcp.NewErrorToolResult("boom"), nil
		}
		return mcp.NewTextToolResult("ok"), nil
	default:
		return nil, &mcp.InternalError{Reason: "unhandled request type in test stub"}
	}
}

// runAcceptorLoop drives one server-side connection off a pipeTransport,
// mirroring what a real WebSocket/stdio acceptor would do: decode,
// dispatch through Server.HandleMessage, send back any reply.
func runAcceptorLoop(t *testing.T, ctx context.Context, server *mcp.Server, connID string, transport *pipeTransport) {
	t.Helper()
	if err := transport.Connect(ctx); err != nil {
		t.Errorf("acceptor connect: %v", err)
		return
	}
	server.AddConnection(connID, transport)
	go func() {
		for {
			msg, err := transport.Receive(ctx)
			if err != nil || msg == nil {
				return
			}
			reply, err := server.HandleMessage(ctx, connID, msg)
			if err != nil {
				t.Logf("HandleMessage error: %v", err)
				continue
			}
			if reply != nil {
				_ = transport.Send(ctx, reply)
			}
		}
	}()
}

func TestHandshakeAndToolCall(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	clientTransport, serverTransport := newPipeTransportPair()

	handler := &stubHandler{tools: []mcp.Tool{{Name: "search", InputSchema: mcp.ToolInputSchema{Type: "object"}}}}
	server, err := mcp.NewServerBuilder(mcp.Implementation{Name: "s", Version: "1"}, handler).
		WithCapabilities(mcp.ServerCapabilities{Tools: &mcp.ToolsCapability{}}).
		Build()
	if err != nil {
		t.Fatalf("server build: %v", err)
	}
	runAcceptorLoop(t, ctx, server, "conn1", serverTransport)

	client, events, err := mcp.NewClientBuilder(mcp.Implementation{Name: "c", Version: "1"}).
		WithTransport(clientTransport).
		Build()
	if err != nil {
		t.Fatalf("client build: %v", err)
	}

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect(ctx)

	select {
	case ev := <-events:
		connected, ok := ev.(*mcp.EventConnected)
		if !ok {
			t.Fatalf("expected EventConnected, got %T", ev)
		}
		if connected.ServerInfo.Name != "s" {
			t.Errorf("server name = %q", connected.ServerInfo.Name)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for Connected event")
	}

	tools, err := client.ListTools(ctx, "")
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools.Tools) != 1 || tools.Tools[0].Name != "search" {
		t.Fatalf("unexpected tools: %+v", tools)
	}

	result, err := client.CallTool(ctx, "search", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool-level error, got success")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok || text.Text != "boom" {
		t.Fatalf("unexpected content: %+v", result.Content)
	}
}

func TestCallToolWithoutCapabilityIsLocalRejection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	clientTransport, serverTransport := newPipeTransportPair()
	handler := &stubHandler{}
	server, _ := mcp.NewServerBuilder(mcp.Implementation{Name: "s", Version: "1"}, handler).Build()
	runAcceptorLoop(t, ctx, server, "conn1", serverTransport)

	client, _, err := mcp.NewClientBuilder(mcp.Implementation{Name: "c", Version: "1"}).
		WithTransport(clientTransport).
		Build()
	if err != nil {
		t.Fatalf("client build: %v", err)
	}
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect(ctx)

	_, err = client.CallTool(ctx, "search", nil)
	var unsupported *mcp.UnsupportedFeatureError
	if err == nil {
		t.Fatal("expected UnsupportedFeatureError")
	}
	if uerr, ok := err.(*mcp.UnsupportedFeatureError); ok {
		unsupported = uerr
	}
	if unsupported == nil {
		t.Fatalf("expected *UnsupportedFeatureError, got %T: %v", err, err)
	}
}
