package mcp

// Audience names the intended reader of an annotated piece of content.
type Audience string

const (
	AudienceUser      Audience = "user"
	AudienceAssistant Audience = "assistant"
)

// Annotations carries optional hints about intended audience and display
// priority, attached to resources, prompt content, and similar entities.
// Priority is clamped to [0.0, 1.0] on construction.
type Annotations struct {
	Audience []Audience `json:"audience,omitempty"`
	Priority *float64   `json:"priority,omitempty"`
}

// NewAnnotations builds an Annotations value, clamping priority into
// [0.0, 1.0] if provided.
func NewAnnotations(audience []Audience, priority *float64) Annotations {
	ann := Annotations{Audience: audience}
	if priority != nil {
		p := *priority
		switch {
		case p < 0:
			p = 0
		case p > 1:
			p = 1
		}
		ann.Priority = &p
	}
	return ann
}
