package mcp

import (
	"testing"

	"go.uber.org/zap"
)

func newTestClient() *Client {
	opts := ClientOptions{logger: zap.NewNop()}
	return newClient(opts, make(chan ClientEvent, 4))
}

// TestListChangedNotificationBeforeInitializeIsProtocolError covers the
// boundary case from spec.md:281: a list-changed notification that
// arrives before the initialize handshake has cached server
// capabilities is a protocol error, and the session continues (no
// panic, no list-changed event emitted).
func TestListChangedNotificationBeforeInitializeIsProtocolError(t *testing.T) {
	for _, method := range []string{
		NotificationResourcesListChanged,
		NotificationPromptsListChanged,
		NotificationToolsListChanged,
	} {
		c := newTestClient()
		note, err := NewNotification(method, nil)
		if err != nil {
			t.Fatalf("%s: build notification: %v", method, err)
		}
		c.handleInboundNotification(note)

		select {
		case ev := <-c.events:
			if _, ok := ev.(*EventError); !ok {
				t.Fatalf("%s: expected *EventError before initialize, got %T", method, ev)
			}
		default:
			t.Fatalf("%s: expected an event, got none", method)
		}
	}
}

// TestListChangedNotificationWithoutCapabilityIsProtocolError covers the
// already-cached-capabilities case: the server never advertised the
// matching list_changed flag.
func TestListChangedNotificationWithoutCapabilityIsProtocolError(t *testing.T) {
	c := newTestClient()
	c.sess.setServerCaps(ServerCapabilities{})

	note, err := NewNotification(NotificationToolsListChanged, nil)
	if err != nil {
		t.Fatalf("build notification: %v", err)
	}
	c.handleInboundNotification(note)

	select {
	case ev := <-c.events:
		if _, ok := ev.(*EventError); !ok {
			t.Fatalf("expected *EventError, got %T", ev)
		}
	default:
		t.Fatal("expected an event, got none")
	}
}

// TestListChangedNotificationEmittedWhenCapabilityAdvertised is the
// positive case: once server capabilities are cached and advertise the
// list_changed flag, the notification becomes the matching ClientEvent.
func TestListChangedNotificationEmittedWhenCapabilityAdvertised(t *testing.T) {
	c := newTestClient()
	c.sess.setServerCaps(ServerCapabilities{Tools: &ToolsCapability{ListChanged: true}})

	note, err := NewNotification(NotificationToolsListChanged, nil)
	if err != nil {
		t.Fatalf("build notification: %v", err)
	}
	c.handleInboundNotification(note)

	select {
	case ev := <-c.events:
		if _, ok := ev.(*EventToolsChanged); !ok {
			t.Fatalf("expected *EventToolsChanged, got %T", ev)
		}
	default:
		t.Fatal("expected an event, got none")
	}
}

// TestProgressNotificationCorrelatesRequestID exercises the progress
// token wiring end to end: a request registered with a progress token
// can be traced back from an inbound notifications/progress carrying
// that same token, populating EventProgress.RequestID.
func TestProgressNotificationCorrelatesRequestID(t *testing.T) {
	c := newTestClient()

	reqID := NewStringID("req-1")
	token := NewStringID("tok-1")
	slot, err := c.corr.register(reqID, MethodToolsCall, 0, nil, &token)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer slot.deliver(slotOutcome{result: []byte(`{}`)})

	note, err := NewNotification(NotificationProgress, ProgressParams{ProgressToken: token, Progress: 0.5})
	if err != nil {
		t.Fatalf("build notification: %v", err)
	}
	c.handleInboundNotification(note)

	select {
	case ev := <-c.events:
		progress, ok := ev.(*EventProgress)
		if !ok {
			t.Fatalf("expected *EventProgress, got %T", ev)
		}
		if !progress.RequestID.Equal(reqID) {
			t.Fatalf("RequestID = %v, want %v", progress.RequestID, reqID)
		}
	default:
		t.Fatal("expected an event, got none")
	}
}
