package mcp

// RootsCapability is offered by the client to advertise it can serve
// roots/list and, optionally, notify on change.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// SamplingCapability is offered by the client to advertise it can serve
// sampling/createMessage.
type SamplingCapability struct{}

// ClientCapabilities is the capability record a client offers during
// handshake (spec "Capability record").
type ClientCapabilities struct {
	Roots        *RootsCapability       `json:"roots,omitempty"`
	Sampling     *SamplingCapability    `json:"sampling,omitempty"`
	Experimental map[string]interface{} `json:"experimental,omitempty"`
}

// HasRoots reports whether the client offered the roots capability.
func (c ClientCapabilities) HasRoots() bool { return c.Roots != nil }

// HasRootsListChanged reports whether the client offered
// roots.listChanged specifically.
func (c ClientCapabilities) HasRootsListChanged() bool {
	return c.Roots != nil && c.Roots.ListChanged
}

// HasSampling reports whether the client offered the sampling capability.
func (c ClientCapabilities) HasSampling() bool { return c.Sampling != nil }

// LoggingCapability is offered by the server to advertise logging/setLevel.
type LoggingCapability struct{}

// CompletionsCapability is offered by the server to advertise
// completion/complete.
type CompletionsCapability struct{}

// PromptsCapability is offered by the server to advertise prompts/list
// and prompts/get, optionally with list-changed notifications.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability is offered by the server to advertise resources/*,
// optionally with list-changed notifications and/or subscriptions.
type ResourcesCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// ToolsCapability is offered by the server to advertise tools/list and
// tools/call, optionally with list-changed notifications.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities is the capability record a server offers during
// handshake (spec "Capability record").
type ServerCapabilities struct {
	Logging      *LoggingCapability      `json:"logging,omitempty"`
	Completions  *CompletionsCapability  `json:"completions,omitempty"`
	Prompts      *PromptsCapability      `json:"prompts,omitempty"`
	Resources    *ResourcesCapability    `json:"resources,omitempty"`
	Tools        *ToolsCapability        `json:"tools,omitempty"`
	Experimental map[string]interface{}  `json:"experimental,omitempty"`
}

func (c ServerCapabilities) hasLogging() bool     { return c.Logging != nil }
func (c ServerCapabilities) hasCompletions() bool { return c.Completions != nil }
func (c ServerCapabilities) hasPrompts() bool     { return c.Prompts != nil }
func (c ServerCapabilities) hasResources() bool   { return c.Resources != nil }
func (c ServerCapabilities) hasTools() bool       { return c.Tools != nil }

func (c ServerCapabilities) hasResourcesSubscribe() bool {
	return c.Resources != nil && c.Resources.Subscribe
}

func (c ServerCapabilities) hasResourcesListChanged() bool {
	return c.Resources != nil && c.Resources.ListChanged
}

func (c ServerCapabilities) hasPromptsListChanged() bool {
	return c.Prompts != nil && c.Prompts.ListChanged
}

func (c ServerCapabilities) hasToolsListChanged() bool {
	return c.Tools != nil && c.Tools.ListChanged
}
