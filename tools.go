package mcp

import "encoding/json"

// ToolInputSchema is a JSON Schema object describing a tool's arguments.
// The core does not validate tool arguments against it; validation is
// delegated to the handler.
type ToolInputSchema struct {
	Type       string                     `json:"type"`
	Properties map[string]json.RawMessage `json:"properties,omitempty"`
	Required   []string                   `json:"required,omitempty"`
}

// ToolAnnotations carries hint flags about a tool's behavior. These are
// advisory, not enforced by the core.
type ToolAnnotations struct {
	Title           *string `json:"title,omitempty"`
	ReadOnlyHint    bool    `json:"readOnlyHint,omitempty"`
	DestructiveHint bool    `json:"destructiveHint,omitempty"`
	IdempotentHint  bool    `json:"idempotentHint,omitempty"`
	OpenWorldHint   bool    `json:"openWorldHint,omitempty"`
}

// Tool is an invocable function the server exposes.
type Tool struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	InputSchema ToolInputSchema  `json:"inputSchema"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
}

// ListToolsParams is the params of tools/list.
type ListToolsParams struct {
	Cursor *string `json:"cursor,omitempty"`
}

// ListToolsResult is the result of tools/list.
type ListToolsResult struct {
	Tools      []Tool  `json:"tools"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// CallToolParams is the params of tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the result of tools/call. Tool-level failures are
// encoded here as IsError=true with explanatory content; they are a
// SUCCESSFUL JSON-RPC response, never a JSON-RPC error.
type CallToolResult struct {
	Content []MessageContent       `json:"-"`
	IsError bool                   `json:"isError,omitempty"`
	Meta    map[string]interface{} `json:"_meta,omitempty"`
}

func (r CallToolResult) MarshalJSON() ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(r.Content))
	for _, c := range r.Content {
		b, err := MarshalMessageContent(c)
		if err != nil {
			return nil, err
		}
		raws = append(raws, b)
	}
	return json.Marshal(struct {
		Content []json.RawMessage      `json:"content"`
		IsError bool                   `json:"isError,omitempty"`
		Meta    map[string]interface{} `json:"_meta,omitempty"`
	}{Content: raws, IsError: r.IsError, Meta: r.Meta})
}

func (r *CallToolResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Content []json.RawMessage      `json:"content"`
		IsError bool                   `json:"isError,omitempty"`
		Meta    map[string]interface{} `json:"_meta,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content := make([]MessageContent, 0, len(wire.Content))
	for _, raw := range wire.Content {
		c, err := UnmarshalMessageContent(raw, false)
		if err != nil {
			return err
		}
		if c != nil {
			content = append(content, c)
		}
	}
	r.Content = content
	r.IsError = wire.IsError
	r.Meta = wire.Meta
	return nil
}

// NewTextToolResult builds a successful CallToolResult with a single text
// content block, the common case for simple tool handlers.
func NewTextToolResult(text string) CallToolResult {
	return CallToolResult{Content: []MessageContent{&TextContent{Text: text}}}
}

// NewErrorToolResult builds a tool-level error result: still a
// successful JSON-RPC response, per spec §4.7's error policy.
func NewErrorToolResult(text string) CallToolResult {
	return CallToolResult{Content: []MessageContent{&TextContent{Text: text}}, IsError: true}
}
