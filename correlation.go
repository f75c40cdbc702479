package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// slotOutcome is what a pending request slot is eventually fed: exactly
// one of a successful result, a peer-returned error, or a local failure
// (timeout, cancellation, connection closed).
type slotOutcome struct {
	result json.RawMessage
	peer   *WireError
	err    error
}

// correlationSlot is the single-shot delivery primitive for one in-flight
// request id (spec "Correlation table" C3).
type correlationSlot struct {
	id            ID
	method        string
	progressToken *ID
	ch            chan slotOutcome
	once          sync.Once
	timer         *time.Timer
}

func (s *correlationSlot) deliver(o slotOutcome) {
	s.once.Do(func() {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.ch <- o
	})
}

// correlationTable multiplexes many outstanding requests over one
// session. Lookups are guarded by a plain mutex; the table itself is
// small and short-lived per entry, so the extra indirection of a
// lock-free map is not worth the complexity here, but every slot is
// single-consumer so readers never block each other once past the map
// lookup.
type correlationTable struct {
	mu    sync.Mutex
	slots map[string]*correlationSlot
	// progressIndex maps a progress token's string form back to the
	// request id that carried it, so an inbound notifications/progress
	// can be scoped to the request that produced it (spec §3 "Progress
	// token", EventProgress.RequestID).
	progressIndex map[string]ID
}

func newCorrelationTable() *correlationTable {
	return &correlationTable{
		slots:         make(map[string]*correlationSlot),
		progressIndex: make(map[string]ID),
	}
}

// register inserts a one-shot response slot keyed by id. It returns
// *InternalError if id collides with one already pending. When
// progressToken is non-nil, the token is indexed so a later
// notifications/progress carrying it can be traced back to id.
func (t *correlationTable) register(id ID, method string, timeout time.Duration, onTimeout func(), progressToken *ID) (*correlationSlot, error) {
	key := id.String()

	t.mu.Lock()
	if _, exists := t.slots[key]; exists {
		t.mu.Unlock()
		return nil, &InternalError{Reason: "request id collision: " + key}
	}
	slot := &correlationSlot{id: id, method: method, progressToken: progressToken, ch: make(chan slotOutcome, 1)}
	t.slots[key] = slot
	if progressToken != nil {
		t.progressIndex[progressToken.String()] = id
	}
	t.mu.Unlock()

	if timeout > 0 {
		slot.timer = time.AfterFunc(timeout, func() {
			if t.remove(key) {
				slot.deliver(slotOutcome{err: &TimeoutError{Method: method, After: timeout.String()}})
				if onTimeout != nil {
					onTimeout()
				}
			}
		})
	}
	return slot, nil
}

// progressRequestID reports the request id registered with the given
// progress token, if any slot is still pending for it.
func (t *correlationTable) progressRequestID(token ID) (ID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.progressIndex[token.String()]
	return id, ok
}

func (t *correlationTable) removeLocked(key string) (*correlationSlot, bool) {
	slot, ok := t.slots[key]
	if !ok {
		return nil, false
	}
	delete(t.slots, key)
	if slot.progressToken != nil {
		delete(t.progressIndex, slot.progressToken.String())
	}
	return slot, true
}

func (t *correlationTable) remove(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.removeLocked(key)
	return ok
}

// complete delivers a result (successful payload, or a peer-returned
// error when peerErr is non-nil) to the waiter registered for id. It
// reports false if id is unknown: a late or duplicate response, which
// the caller should log and discard rather than treat as fatal.
func (t *correlationTable) complete(id ID, result json.RawMessage, peerErr *WireError) bool {
	key := id.String()
	t.mu.Lock()
	slot, ok := t.removeLocked(key)
	t.mu.Unlock()
	if !ok {
		return false
	}
	slot.deliver(slotOutcome{result: result, peer: peerErr})
	return true
}

// cancel removes the slot without delivering a result and reports the
// method it was registered for so the caller can emit
// notifications/cancelled. ok is false if the id is not pending.
func (t *correlationTable) cancel(id ID, reason string) (method string, ok bool) {
	key := id.String()
	t.mu.Lock()
	slot, found := t.removeLocked(key)
	t.mu.Unlock()
	if !found {
		return "", false
	}
	slot.deliver(slotOutcome{err: &CancelledError{Reason: reason}})
	return slot.method, true
}

// failAll drains the table and delivers ConnectionClosed to every
// outstanding waiter, used during session teardown.
func (t *correlationTable) failAll(reason string) {
	t.mu.Lock()
	slots := t.slots
	t.slots = make(map[string]*correlationSlot)
	t.progressIndex = make(map[string]ID)
	t.mu.Unlock()

	for _, slot := range slots {
		slot.deliver(slotOutcome{err: &ConnectionClosedError{Reason: reason}})
	}
}

// len reports the number of in-flight requests, for tests and metrics.
func (t *correlationTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}

// await blocks until the slot is delivered or ctx is cancelled, returning
// the raw result, the peer error (as *ServerError), or a local error.
func (t *correlationTable) await(ctx context.Context, slot *correlationSlot) (json.RawMessage, error) {
	select {
	case outcome := <-slot.ch:
		if outcome.err != nil {
			return nil, outcome.err
		}
		if outcome.peer != nil {
			return nil, &ServerError{Code: outcome.peer.Code, Message: outcome.peer.Message, Data: outcome.peer.Data}
		}
		return outcome.result, nil
	case <-ctx.Done():
		t.remove(slot.id.String())
		return nil, ctx.Err()
	}
}
