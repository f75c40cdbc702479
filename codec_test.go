package mcp_test

import (
	"encoding/json"
	"testing"

	mcp "github.com/nkohen/mcpcore"
)

func TestDecodeClassifiesEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, msg mcp.Message)
	}{
		{
			name: "request",
			raw:  `{"jsonrpc":"2.0","id":1,"method":"ping"}`,
			check: func(t *testing.T, msg mcp.Message) {
				req, ok := msg.(*mcp.Request)
				if !ok {
					t.Fatalf("expected *Request, got %T", msg)
				}
				if req.Method != "ping" {
					t.Errorf("method = %q", req.Method)
				}
			},
		},
		{
			name: "notification",
			raw:  `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			check: func(t *testing.T, msg mcp.Message) {
				if _, ok := msg.(*mcp.Notification); !ok {
					t.Fatalf("expected *Notification, got %T", msg)
				}
			},
		},
		{
			name: "response",
			raw:  `{"jsonrpc":"2.0","id":1,"result":{}}`,
			check: func(t *testing.T, msg mcp.Message) {
				if _, ok := msg.(*mcp.Response); !ok {
					t.Fatalf("expected *Response, got %T", msg)
				}
			},
		},
		{
			name: "error",
			raw:  `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"not found"}}`,
			check: func(t *testing.T, msg mcp.Message) {
				errResp, ok := msg.(*mcp.ErrorResponse)
				if !ok {
					t.Fatalf("expected *ErrorResponse, got %T", msg)
				}
				if errResp.Error.Code != -32601 {
					t.Errorf("code = %d", errResp.Error.Code)
				}
			},
		},
		{
			name: "request batch",
			raw:  `[{"jsonrpc":"2.0","id":1,"method":"ping"},{"jsonrpc":"2.0","method":"notifications/initialized"}]`,
			check: func(t *testing.T, msg mcp.Message) {
				batch, ok := msg.(mcp.BatchRequest)
				if !ok {
					t.Fatalf("expected BatchRequest, got %T", msg)
				}
				if len(batch) != 2 {
					t.Errorf("len = %d", len(batch))
				}
			},
		},
		{
			name: "response batch",
			raw:  `[{"jsonrpc":"2.0","id":1,"result":{}},{"jsonrpc":"2.0","id":2,"error":{"code":-32603,"message":"boom"}}]`,
			check: func(t *testing.T, msg mcp.Message) {
				batch, ok := msg.(mcp.BatchResponse)
				if !ok {
					t.Fatalf("expected BatchResponse, got %T", msg)
				}
				if len(batch) != 2 {
					t.Errorf("len = %d", len(batch))
				}
			},
		},
		{
			name:    "malformed json",
			raw:     `{"jsonrpc":"2.0",`,
			wantErr: true,
		},
		{
			name:    "neither method nor result nor error",
			raw:     `{"jsonrpc":"2.0","id":1}`,
			wantErr: true,
		},
		{
			name:    "wrong jsonrpc version",
			raw:     `{"jsonrpc":"1.0","id":1,"method":"ping"}`,
			wantErr: true,
		},
		{
			name:    "empty batch",
			raw:     `[]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := mcp.Decode([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, msg)
		})
	}
}

func TestEncodeOmitsAbsentOptionalFields(t *testing.T) {
	req, err := mcp.NewRequest(mcp.NewStringID("req-1"), "ping", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	raw, err := mcp.Encode(req)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, present := generic["params"]; present {
		t.Errorf("expected params to be omitted, got %s", raw)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	originals := []string{
		`{"jsonrpc":"2.0","id":"init","method":"initialize","params":{"protocolVersion":"2025-03-26"}}`,
		`{"jsonrpc":"2.0","id":7,"result":{"tools":[]}}`,
		`{"jsonrpc":"2.0","method":"notifications/progress","params":{"progressToken":"t","progress":1}}`,
		`{"jsonrpc":"2.0","id":7,"error":{"code":-32601,"message":"Method not found"}}`,
	}

	for _, raw := range originals {
		msg, err := mcp.Decode([]byte(raw))
		if err != nil {
			t.Fatalf("Decode(%s): %v", raw, err)
		}
		encoded, err := mcp.Encode(msg)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		msg2, err := mcp.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(encoded): %v", err)
		}
		encoded2, err := mcp.Encode(msg2)
		if err != nil {
			t.Fatalf("Encode(2nd): %v", err)
		}
		var a, b map[string]interface{}
		if err := json.Unmarshal(encoded, &a); err != nil {
			t.Fatalf("unmarshal encoded: %v", err)
		}
		if err := json.Unmarshal(encoded2, &b); err != nil {
			t.Fatalf("unmarshal encoded2: %v", err)
		}
		aJSON, _ := json.Marshal(a)
		bJSON, _ := json.Marshal(b)
		if string(aJSON) != string(bJSON) {
			t.Errorf("round trip mismatch: %s != %s", aJSON, bJSON)
		}
	}
}
