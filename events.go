package mcp

// ClientEvent is the sealed union of events the client engine surfaces
// to the application over its event stream (spec "Event stream").
// Concrete variants implement clientEvent with a marker method, the same
// sealed-interface idiom the teacher uses for its streaming events.
type ClientEvent interface {
	clientEvent()
}

// EventConnected is emitted once the initialize handshake completes.
type EventConnected struct {
	ServerInfo      Implementation
	ProtocolVersion string
	Capabilities    ServerCapabilities
	Instructions    *string
	// VersionMismatch is set when the negotiated protocol version is not
	// one this engine recognizes; the connection still proceeds.
	VersionMismatch bool
}

func (*EventConnected) clientEvent() {}

// EventDisconnected is emitted whenever the session transitions to
// Disconnected, carrying the reason (transport failure, explicit
// disconnect, or fatal protocol error).
type EventDisconnected struct {
	Reason string
}

func (*EventDisconnected) clientEvent() {}

// EventResourcesChanged mirrors notifications/resources/list_changed.
type EventResourcesChanged struct{}

func (*EventResourcesChanged) clientEvent() {}

// EventResourceUpdated mirrors notifications/resources/updated.
type EventResourceUpdated struct {
	URI string
}

func (*EventResourceUpdated) clientEvent() {}

// EventPromptsChanged mirrors notifications/prompts/list_changed.
type EventPromptsChanged struct{}

func (*EventPromptsChanged) clientEvent() {}

// EventToolsChanged mirrors notifications/tools/list_changed.
type EventToolsChanged struct{}

func (*EventToolsChanged) clientEvent() {}

// EventRootsChanged is emitted when the server asks for the client's
// current roots (S→C roots/list) and the client has the capability.
type EventRootsChanged struct{}

func (*EventRootsChanged) clientEvent() {}

// EventLogMessage mirrors notifications/message.
type EventLogMessage struct {
	Level  LogLevel
	Logger *string
	Data   []byte
}

func (*EventLogMessage) clientEvent() {}

// EventProgress mirrors notifications/progress, scoped to the request
// that produced it via RequestID where known.
type EventProgress struct {
	RequestID ID
	Token     ID
	Progress  float64
	Total     *float64
	Message   *string
}

func (*EventProgress) clientEvent() {}

// EventError surfaces a non-fatal error (e.g. a Parse or Protocol error
// on an inbound message) to the application without tearing down the
// session.
type EventError struct {
	Err error
}

func (*EventError) clientEvent() {}
