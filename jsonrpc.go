package mcp

import (
	"encoding/json"
	"fmt"
)

// jsonrpcVersion is the protocol version string stamped on every envelope.
const jsonrpcVersion = "2.0"

// JSON-RPC 2.0 error codes (spec ยง6). Custom codes start at -32000.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603

	// ErrCodeNotInitialized is the server-defined code for requests (other
	// than initialize) received before the connection completes handshake.
	ErrCodeNotInitialized = -32002
)

// ID is the discriminated union of signed-integer or string that JSON-RPC
// 2.0 allows for request ids and, reused verbatim, for progress tokens
// (spec ยง3 "Progress token"). The zero value is the null id.
type ID struct {
	str   string
	num   int64
	isStr bool
	isSet bool
}

// NewStringID builds a string-valued ID.
func NewStringID(s string) ID { return ID{str: s, isStr: true, isSet: true} }

// NewIntID builds an integer-valued ID.
func NewIntID(n int64) ID { return ID{num: n, isSet: true} }

// IsNil reports whether the id carries no value (JSON-RPC "id": null).
func (id ID) IsNil() bool { return !id.isSet }

// IsString reports whether the underlying value is a string.
func (id ID) IsString() bool { return id.isSet && id.isStr }

// StringValue returns the string payload and whether the id is string-valued.
func (id ID) StringValue() (string, bool) { return id.str, id.isSet && id.isStr }

// IntValue returns the integer payload and whether the id is integer-valued.
func (id ID) IntValue() (int64, bool) { return id.num, id.isSet && !id.isStr }

// String renders the id for logs and for use as a correlation-table key.
func (id ID) String() string {
	switch {
	case !id.isSet:
		return "<nil>"
	case id.isStr:
		return "s:" + id.str
	default:
		return fmt.Sprintf("n:%d", id.num)
	}
}

// Equal reports whether two ids carry the same discriminant and value.
func (id ID) Equal(other ID) bool {
	if id.isSet != other.isSet {
		return false
	}
	if !id.isSet {
		return true
	}
	if id.isStr != other.isStr {
		return false
	}
	if id.isStr {
		return id.str == other.str
	}
	return id.num == other.num
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case !id.isSet:
		return []byte("null"), nil
	case id.isStr:
		return json.Marshal(id.str)
	default:
		return json.Marshal(id.num)
	}
}

// UnmarshalJSON implements json.Unmarshaler. Numbers are decoded through
// json.Number so integer ids round-trip exactly instead of losing
// precision through float64, and a non-integral number is rejected.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := trimJSONSpace(data)
	if string(trimmed) == "null" {
		*id = ID{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NewStringID(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("request id: %w", err)
	}
	n, err := num.Int64()
	if err != nil {
		return fmt.Errorf("request id: non-integer number %q", num.String())
	}
	*id = NewIntID(n)
	return nil
}

func trimJSONSpace(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && isJSONSpace(b[i]) {
		i++
	}
	for j > i && isJSONSpace(b[j-1]) {
		j--
	}
	return b[i:j]
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// WireError is the JSON-RPC 2.0 error object carried by an ErrorResponse.
type WireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Request is the JSON-RPC envelope for a call expecting a reply.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is the JSON-RPC envelope for a successful reply.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      ID              `json:"id"`
	Result  json.RawMessage `json:"result"`
}

// ErrorResponse is the JSON-RPC envelope for a failed reply.
type ErrorResponse struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      ID         `json:"id"`
	Error   *WireError `json:"error"`
}

// Notification is the JSON-RPC envelope for a fire-and-forget message; it
// never carries an id and never receives a reply.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// BatchRequest is an ordered sequence of Request and/or Notification
// messages, encoded and decoded as a single JSON array.
type BatchRequest []Message

// BatchResponse is an ordered sequence of Response and/or ErrorResponse
// messages, encoded and decoded as a single JSON array.
type BatchResponse []Message

// Message is the sealed union of the six JSON-RPC envelope shapes the wire
// codec produces (spec ยง3 "JSON-RPC envelope").
type Message interface {
	isMessage()
}

func (*Request) isMessage()      {}
func (*Response) isMessage()     {}
func (*ErrorResponse) isMessage() {}
func (*Notification) isMessage() {}
func (BatchRequest) isMessage()  {}
func (BatchResponse) isMessage() {}

// NewRequest builds a Request envelope, marshaling params if non-nil.
func NewRequest(id ID, method string, params any) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params for %s: %w", method, err)
	}
	return &Request{JSONRPC: jsonrpcVersion, ID: id, Method: method, Params: raw}, nil
}

// NewNotification builds a Notification envelope, marshaling params if non-nil.
func NewNotification(method string, params any) (*Notification, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params for %s: %w", method, err)
	}
	return &Notification{JSONRPC: jsonrpcVersion, Method: method, Params: raw}, nil
}

// NewResponse builds a successful Response envelope.
func NewResponse(id ID, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{JSONRPC: jsonrpcVersion, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an ErrorResponse envelope.
func NewErrorResponse(id ID, code int, message string, data any) (*ErrorResponse, error) {
	var raw json.RawMessage
	if data != nil {
		d, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal error data: %w", err)
		}
		raw = d
	}
	return &ErrorResponse{JSONRPC: jsonrpcVersion, ID: id, Error: &WireError{Code: code, Message: message, Data: raw}}, nil
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	if raw, ok := params.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(params)
}

// attachProgressToken marshals params and, if token is non-nil, merges a
// `_meta.progressToken` field into the resulting object so the responder
// can echo it on notifications/progress (spec §3 "Progress token").
func attachProgressToken(params any, token *ID) (json.RawMessage, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return raw, nil
	}
	fields := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("attach progress token: params is not an object: %w", err)
		}
	}
	metaRaw, err := json.Marshal(RequestMeta{ProgressToken: token})
	if err != nil {
		return nil, err
	}
	fields["_meta"] = metaRaw
	return json.Marshal(fields)
}
