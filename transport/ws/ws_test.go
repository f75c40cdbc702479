package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	mcp "github.com/nkohen/mcpcore"
	"github.com/nkohen/mcpcore/transport/ws"
)

func newServerClientPair(t *testing.T) (*ws.Transport, *ws.Transport) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	serverCh := make(chan *ws.Transport, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		serverCh <- ws.Wrap(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client, err := ws.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	server := <-serverCh
	return server, client
}

func TestWSSendReceiveRoundTrip(t *testing.T) {
	server, client := newServerClientPair(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	req, err := mcp.NewRequest(mcp.NewStringID("1"), mcp.MethodPing, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- client.Send(ctx, req)
	}()

	msg, err := server.Receive(ctx)
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

func TestWSIsConnectedAfterDialAndWrap(t *testing.T) {
	server, client := newServerClientPair(t)
	if !server.IsConnected() {
		t.Error("expected server transport connected after Wrap")
	}
	if !client.IsConnected() {
		t.Error("expected client transport connected after Dial")
	}
}

func TestWSDisconnectClosesConnection(t *testing.T) {
	server, client := newServerClientPair(t)
	if err := client.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if client.IsConnected() {
		t.Error("expected IsConnected false after Disconnect")
	}

	// The peer's Receive sees the closed connection instead of a message.
	if msg, _ := server.Receive(context.Background()); msg != nil {
		t.Errorf("server.Receive after client.Disconnect = %T, want no message", msg)
	}
}
