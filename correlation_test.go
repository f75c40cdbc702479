package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestCorrelationRegisterCollision(t *testing.T) {
	table := newCorrelationTable()
	id := NewIntID(1)
	if _, err := table.register(id, "ping", 0, nil, nil); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := table.register(id, "ping", 0, nil, nil); err == nil {
		t.Fatal("expected InternalError on id collision")
	}
}

func TestCorrelationCompleteDeliversResult(t *testing.T) {
	table := newCorrelationTable()
	id := NewStringID("r1")
	slot, err := table.register(id, "tools/list", 0, nil, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	want := json.RawMessage(`{"tools":[]}`)
	if !table.complete(id, want, nil) {
		t.Fatal("expected complete to find the slot")
	}

	got, err := table.await(context.Background(), slot)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCorrelationCompleteUnknownIDIsNoop(t *testing.T) {
	table := newCorrelationTable()
	if table.complete(NewIntID(99), json.RawMessage(`{}`), nil) {
		t.Fatal("expected complete on unknown id to report false")
	}
}

func TestCorrelationCompleteWithPeerError(t *testing.T) {
	table := newCorrelationTable()
	id := NewIntID(1)
	slot, _ := table.register(id, "tools/call", 0, nil, nil)
	table.complete(id, nil, &WireError{Code: ErrCodeMethodNotFound, Message: "nope"})

	_, err := table.await(context.Background(), slot)
	if err == nil {
		t.Fatal("expected an error")
	}
	se, ok := AsServerError(err)
	if !ok {
		t.Fatalf("expected *ServerError, got %T: %v", err, err)
	}
	if se.Code != ErrCodeMethodNotFound {
		t.Errorf("code = %d", se.Code)
	}
}

func TestCorrelationCancel(t *testing.T) {
	table := newCorrelationTable()
	id := NewIntID(7)
	slot, _ := table.register(id, "tools/call", 0, nil, nil)

	method, ok := table.cancel(id, "user abort")
	if !ok || method != "tools/call" {
		t.Fatalf("cancel = (%q, %v)", method, ok)
	}

	_, err := table.await(context.Background(), slot)
	var ce *CancelledError
	if !asType(err, &ce) {
		t.Fatalf("expected *CancelledError, got %T: %v", err, err)
	}

	if table.len() != 0 {
		t.Errorf("expected empty table after cancel, got %d", table.len())
	}
}

func TestCorrelationFailAll(t *testing.T) {
	table := newCorrelationTable()
	s1, _ := table.register(NewIntID(1), "ping", 0, nil, nil)
	s2, _ := table.register(NewIntID(2), "ping", 0, nil, nil)

	table.failAll("transport closed")

	for _, s := range []*correlationSlot{s1, s2} {
		_, err := table.await(context.Background(), s)
		var cc *ConnectionClosedError
		if !asType(err, &cc) {
			t.Fatalf("expected *ConnectionClosedError, got %T: %v", err, err)
		}
	}
	if table.len() != 0 {
		t.Errorf("expected empty table after failAll, got %d", table.len())
	}
}

func TestCorrelationTimeout(t *testing.T) {
	table := newCorrelationTable()
	id := NewIntID(1)
	slot, err := table.register(id, "tools/call", 10*time.Millisecond, nil, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = table.await(context.Background(), slot)
	var te *TimeoutError
	if !asType(err, &te) {
		t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
	}

	// A late response after timeout must be ignored, not delivered.
	if table.complete(id, json.RawMessage(`{}`), nil) {
		t.Error("expected late completion to be a no-op after timeout")
	}
}

func asType[T any](err error, target *T) bool {
	v, ok := err.(T)
	if !ok {
		return false
	}
	*target = v
	return true
}
