package mcp

import "encoding/json"

// SamplingMessage is one turn in a sampling request's conversation.
type SamplingMessage struct {
	Role    Role           `json:"role"`
	Content MessageContent `json:"-"`
}

func (m SamplingMessage) MarshalJSON() ([]byte, error) {
	content, err := MarshalMessageContent(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}{Role: m.Role, Content: content})
}

func (m *SamplingMessage) UnmarshalJSON(data []byte) error {
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

// ModelPreferences are advisory hints the client may pass to steer the
// server's model choice; the core round-trips them without interpreting.
type ModelPreferences struct {
	Hints                []map[string]string `json:"hints,omitempty"`
	CostPriority         *float64            `json:"costPriority,omitempty"`
	SpeedPriority        *float64            `json:"speedPriority,omitempty"`
	IntelligencePriority *float64            `json:"intelligencePriority,omitempty"`
}

// CreateMessageParams is the params of the server-to-client
// sampling/createMessage request.
type CreateMessageParams struct {
	Messages         []SamplingMessage `json:"messages"`
	ModelPreferences *ModelPreferences `json:"modelPreferences,omitempty"`
	SystemPrompt     *string           `json:"systemPrompt,omitempty"`
	MaxTokens        int               `json:"maxTokens"`
}

// CreateMessageResult is the result the client returns for
// sampling/createMessage, carrying the model's reply.
type CreateMessageResult struct {
	Role       Role           `json:"role"`
	Content    MessageContent `json:"-"`
	Model      string         `json:"model"`
	StopReason *string        `json:"stopReason,omitempty"`
}

func (r CreateMessageResult) MarshalJSON() ([]byte, error) {
	content, err := MarshalMessageContent(r.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Role       Role            `json:"role"`
		Content    json.RawMessage `json:"content"`
		Model      string          `json:"model"`
		StopReason *string         `json:"stopReason,omitempty"`
	}{Role: r.Role, Content: content, Model: r.Model, StopReason: r.StopReason})
}

func (r *CreateMessageResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role       Role            `json:"role"`
		Content    json.RawMessage `json:"content"`
		Model      string          `json:"model"`
		StopReason *string         `json:"stopReason,omitempty"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := UnmarshalMessageContent(wire.Content, false)
	if err != nil {
		return err
	}
	r.Role = wire.Role
	r.Content = content
	r.Model = wire.Model
	r.StopReason = wire.StopReason
	return nil
}
