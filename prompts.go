package mcp

import "encoding/json"

// PromptArgument describes one named input a prompt template accepts.
type PromptArgument struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
}

// Prompt is a parameterized message template the server offers.
type Prompt struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// Role identifies the speaker of a prompt or sampling message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageContent is the tagged union of content a prompt or sampling
// message carries: text, image, audio, or an embedded resource.
type MessageContent interface {
	messageContent()
}

// TextContent is the "text" variant of MessageContent.
type TextContent struct {
	Text        string       `json:"text"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

func (*TextContent) messageContent() {}

// ImageContent is the "image" variant of MessageContent; Data is
// base64-encoded.
type ImageContent struct {
	Data        string       `json:"data"`
	MimeType    string       `json:"mimeType"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

func (*ImageContent) messageContent() {}

// AudioContent is the "audio" variant of MessageContent; Data is
// base64-encoded.
type AudioContent struct {
	Data        string       `json:"data"`
	MimeType    string       `json:"mimeType"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

func (*AudioContent) messageContent() {}

// EmbeddedResource is the "resource" variant of MessageContent: a
// resource's content inlined into a message.
type EmbeddedResource struct {
	Resource    ResourceContent `json:"resource"`
	Annotations *Annotations    `json:"annotations,omitempty"`
}

func (*EmbeddedResource) messageContent() {}

type messageContentEnvelope struct {
	Type        string          `json:"type"`
	Text        *string         `json:"text,omitempty"`
	Data        *string         `json:"data,omitempty"`
	MimeType    *string         `json:"mimeType,omitempty"`
	Resource    json.RawMessage `json:"resource,omitempty"`
	Annotations *Annotations    `json:"annotations,omitempty"`
}

// MarshalMessageContent encodes a MessageContent value with its "type" tag.
func MarshalMessageContent(c MessageContent) ([]byte, error) {
	switch v := c.(type) {
	case *TextContent:
		return json.Marshal(messageContentEnvelope{Type: "text", Text: &v.Text, Annotations: v.Annotations})
	case *ImageContent:
		return json.Marshal(messageContentEnvelope{Type: "image", Data: &v.Data, MimeType: &v.MimeType, Annotations: v.Annotations})
	case *AudioContent:
		return json.Marshal(messageContentEnvelope{Type: "audio", Data: &v.Data, MimeType: &v.MimeType, Annotations: v.Annotations})
	case *EmbeddedResource:
		raw, err := marshalResourceContent(v.Resource)
		if err != nil {
			return nil, err
		}
		return json.Marshal(messageContentEnvelope{Type: "resource", Resource: raw, Annotations: v.Annotations})
	default:
		return nil, &InternalError{Reason: "unknown message content type"}
	}
}

// UnmarshalMessageContent decodes a tagged MessageContent value. An
// unrecognized type tag is rejected in strict mode (the client) and
// should be tolerated by lenient callers (the server) per the content
// tagging policy; lenientUnknown controls which applies.
func UnmarshalMessageContent(raw json.RawMessage, lenientUnknown bool) (MessageContent, error) {
	var env messageContentEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ParseError{Reason: "invalid message content", Cause: err}
	}
	switch env.Type {
	case "text":
		if env.Text == nil {
			return nil, &ParseError{Reason: "text content missing text field"}
		}
		return &TextContent{Text: *env.Text, Annotations: env.Annotations}, nil
	case "image":
		if env.Data == nil || env.MimeType == nil {
			return nil, &ParseError{Reason: "image content missing data or mimeType"}
		}
		return &ImageContent{Data: *env.Data, MimeType: *env.MimeType, Annotations: env.Annotations}, nil
	case "audio":
		if env.Data == nil || env.MimeType == nil {
			return nil, &ParseError{Reason: "audio content missing data or mimeType"}
		}
		return &AudioContent{Data: *env.Data, MimeType: *env.MimeType, Annotations: env.Annotations}, nil
	case "resource":
		res, err := unmarshalResourceContent(env.Resource)
		if err != nil {
			return nil, err
		}
		return &EmbeddedResource{Resource: res, Annotations: env.Annotations}, nil
	default:
		if lenientUnknown {
			return nil, nil
		}
		return nil, &ParseError{Reason: "unknown content type tag: " + env.Type}
	}
}

// PromptMessage is one turn of a rendered prompt.
type PromptMessage struct {
	Role    Role           `json:"role"`
	Content MessageContent `json:"-"`
}

func (m PromptMessage) MarshalJSON() ([]byte, error) {
	content, err := MarshalMessageContent(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}{Role: m.Role, Content: content})
}

func (m *PromptMessage) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := UnmarshalMessageContent(wire.Content, false)
	if err != nil {
		return err
	}
	m.Role = wire.Role
	m.Content = content
	return nil
}

// ListPromptsParams is the params of prompts/list.
type ListPromptsParams struct {
	Cursor *string `json:"cursor,omitempty"`
}

// ListPromptsResult is the result of prompts/list.
type ListPromptsResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor *string  `json:"nextCursor,omitempty"`
}

// GetPromptParams is the params of prompts/get.
type GetPromptParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// GetPromptResult is the result of prompts/get.
type GetPromptResult struct {
	Description *string         `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}
