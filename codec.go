package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode classifies a single raw JSON value into its Message variant,
// following the classification algorithm of the wire codec: arrays are
// batches (classified by whether any element looks like a request), and
// objects are classified by which of {method, id, result, error} are
// present. Malformed JSON yields ParseError; well-formed JSON that does
// not match any envelope shape yields ProtocolError.
func Decode(raw []byte) (Message, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &ParseError{Reason: "empty payload"}
	}
	if trimmed[0] == '[' {
		return decodeBatch(trimmed)
	}
	return decodeSingle(trimmed)
}

func decodeBatch(raw []byte) (Message, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ParseError{Reason: "invalid batch array", Cause: err}
	}
	if len(elems) == 0 {
		return nil, &ProtocolError{Reason: "batch must not be empty"}
	}

	isRequestBatch := false
	for _, e := range elems {
		var probe struct {
			Method *string `json:"method"`
			ID     *ID     `json:"id"`
		}
		if err := json.Unmarshal(e, &probe); err != nil {
			return nil, &ParseError{Reason: "invalid batch element", Cause: err}
		}
		if probe.Method != nil {
			isRequestBatch = true
			break
		}
	}

	if isRequestBatch {
		batch := make(BatchRequest, 0, len(elems))
		for _, e := range elems {
			msg, err := decodeSingle(e)
			if err != nil {
				return nil, err
			}
			switch msg.(type) {
			case *Request, *Notification:
				batch = append(batch, msg)
			default:
				return nil, &ProtocolError{Reason: "request batch element is neither request nor notification"}
			}
		}
		return batch, nil
	}

	batch := make(BatchResponse, 0, len(elems))
	for _, e := range elems {
		msg, err := decodeSingle(e)
		if err != nil {
			return nil, err
		}
		switch msg.(type) {
		case *Response, *ErrorResponse:
			batch = append(batch, msg)
		default:
			return nil, &ProtocolError{Reason: "response batch element is neither response nor error"}
		}
	}
	return batch, nil
}

func decodeSingle(raw []byte) (Message, error) {
	var probe struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      *ID             `json:"id"`
		Method  *string         `json:"method"`
		Result  json.RawMessage `json:"result"`
		Error   *WireError      `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &ParseError{Reason: "invalid envelope", Cause: err}
	}
	if probe.JSONRPC != "" && probe.JSONRPC != jsonrpcVersion {
		return nil, &ProtocolError{Reason: fmt.Sprintf("unsupported jsonrpc version %q", probe.JSONRPC)}
	}

	switch {
	case probe.Method != nil && probe.ID != nil:
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, &ParseError{Reason: "invalid request", Cause: err}
		}
		req.JSONRPC = jsonrpcVersion
		return &req, nil
	case probe.Method != nil:
		var note Notification
		if err := json.Unmarshal(raw, &note); err != nil {
			return nil, &ParseError{Reason: "invalid notification", Cause: err}
		}
		note.JSONRPC = jsonrpcVersion
		return &note, nil
	case probe.Result != nil:
		var resp Response
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, &ParseError{Reason: "invalid response", Cause: err}
		}
		resp.JSONRPC = jsonrpcVersion
		return &resp, nil
	case probe.Error != nil:
		var id ID
		if probe.ID != nil {
			id = *probe.ID
		}
		return &ErrorResponse{JSONRPC: jsonrpcVersion, ID: id, Error: probe.Error}, nil
	default:
		return nil, &ProtocolError{Reason: "envelope has none of method, result, or error"}
	}
}

// Encode serializes a Message back to its wire form. Optional fields left
// unset at construction (nil RawMessage) are omitted by the struct tags,
// so encode/decode is lossless up to field-order and absent-vs-null.
func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case *Request, *Response, *ErrorResponse, *Notification:
		return json.Marshal(m)
	case BatchRequest:
		return encodeBatch([]Message(m))
	case BatchResponse:
		return encodeBatch([]Message(m))
	default:
		return nil, &InternalError{Reason: fmt.Sprintf("unknown message type %T", msg)}
	}
}

func encodeBatch(msgs []Message) ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(msgs))
	for _, m := range msgs {
		b, err := Encode(m)
		if err != nil {
			return nil, err
		}
		raws = append(raws, b)
	}
	return json.Marshal(raws)
}
