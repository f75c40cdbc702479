package mcp

// Method names the wire protocol's fixed method catalogue (spec §6).
const (
	MethodInitialize = "initialize"
	MethodPing       = "ping"

	MethodResourcesList          = "resources/list"
	MethodResourcesTemplatesList = "resources/templates/list"
	MethodResourcesRead          = "resources/read"
	MethodResourcesSubscribe     = "resources/subscribe"
	MethodResourcesUnsubscribe   = "resources/unsubscribe"

	MethodPromptsList = "prompts/list"
	MethodPromptsGet  = "prompts/get"

	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"

	MethodLoggingSetLevel = "logging/setLevel"
	MethodCompletionComplete = "completion/complete"

	MethodRootsList           = "roots/list"
	MethodSamplingCreateMessage = "sampling/createMessage"

	NotificationInitialized         = "notifications/initialized"
	NotificationCancelled           = "notifications/cancelled"
	NotificationProgress            = "notifications/progress"
	NotificationMessage             = "notifications/message"
	NotificationResourcesListChanged = "notifications/resources/list_changed"
	NotificationResourcesUpdated    = "notifications/resources/updated"
	NotificationPromptsListChanged  = "notifications/prompts/list_changed"
	NotificationToolsListChanged    = "notifications/tools/list_changed"
	NotificationRootsListChanged    = "notifications/roots/list_changed"
)

// CancelledParams is the params of notifications/cancelled.
type CancelledParams struct {
	RequestID ID      `json:"requestId"`
	Reason    *string `json:"reason,omitempty"`
}

// ProgressParams is the params of notifications/progress.
type ProgressParams struct {
	ProgressToken ID      `json:"progressToken"`
	Progress      float64 `json:"progress"`
	Total         *float64 `json:"total,omitempty"`
	Message       *string  `json:"message,omitempty"`
}

// ResourceUpdatedParams is the params of notifications/resources/updated.
type ResourceUpdatedParams struct {
	URI string `json:"uri"`
}

// RequestMeta is the `_meta` object a requester may attach to any
// request's params (spec §3 "Progress token"): `progressToken` ties
// subsequent notifications/progress messages back to this request.
type RequestMeta struct {
	ProgressToken *ID `json:"progressToken,omitempty"`
}
