package mcp

// EmptyResult is the `{}` result shared by operations that acknowledge
// without returning data (resources/subscribe, resources/unsubscribe,
// logging/setLevel).
type EmptyResult struct{}

// RequestContext carries everything a ServiceHandler needs about the
// connection a request arrived on, per spec §4.7: client id, initialized
// flag, peer identity, peer capabilities, and the server's own options.
type RequestContext struct {
	ConnectionID    string
	Initialized     bool
	PeerInfo        PeerInfo
	PeerCapabilities ClientCapabilities
	ServerOptions   ServerOptions
}

// ServiceRequest is the sealed union of every domain request variant the
// server engine may hand to a ServiceHandler. A single entry point with
// a tagged request union, rather than one virtual method per operation,
// avoids combinatorial capability-presence checks at the handler
// interface (spec §9 design note).
type ServiceRequest interface {
	serviceRequest()
}

// ServiceResponse is the sealed union of result variants a ServiceHandler
// returns, one per ServiceRequest variant.
type ServiceResponse interface {
	serviceResponse()
}

func (ListResourcesParams) serviceRequest()          {}
func (ListResourceTemplatesParams) serviceRequest()  {}
func (ReadResourceParams) serviceRequest()           {}
func (ListPromptsParams) serviceRequest()            {}
func (GetPromptParams) serviceRequest()              {}
func (ListToolsParams) serviceRequest()              {}
func (CallToolParams) serviceRequest()               {}
func (SetLevelParams) serviceRequest()               {}
func (CompleteParams) serviceRequest()                {}

// SubscribeResourceRequest is the handler-facing variant for
// resources/subscribe, distinct from UnsubscribeResourceRequest even
// though both share the wire shape {uri}.
type SubscribeResourceRequest struct {
	URI string
}

func (SubscribeResourceRequest) serviceRequest() {}

// UnsubscribeResourceRequest is the handler-facing variant for
// resources/unsubscribe.
type UnsubscribeResourceRequest struct {
	URI string
}

func (UnsubscribeResourceRequest) serviceRequest() {}

func (ListResourcesResult) serviceResponse()         {}
func (ListResourceTemplatesResult) serviceResponse() {}
func (ReadResourceResult) serviceResponse()          {}
func (ListPromptsResult) serviceResponse()           {}
func (GetPromptResult) serviceResponse()             {}
func (ListToolsResult) serviceResponse()             {}
func (CallToolResult) serviceResponse()              {}
func (CompleteResult) serviceResponse()               {}
func (EmptyResult) serviceResponse()                  {}

// ServiceHandler is the application-supplied contract the server engine
// dispatches validated, capability-gated requests to.
type ServiceHandler interface {
	// HandleRequest resolves exactly one ServiceRequest variant into the
	// matching ServiceResponse variant, or an error. Handler errors
	// surface as JSON-RPC errors (-32603 unless the handler returns a
	// *ServerError with a custom code); tool execution failures must
	// instead be encoded as CallToolResult{IsError: true}, never as an
	// error return, so the model can observe them.
	HandleRequest(ctx *RequestContext, req ServiceRequest) (ServiceResponse, error)
}

// ConnectionObserver is an optional set of lifecycle hooks a
// ServiceHandler may additionally implement, checked with a type
// assertion (the http.Flusher/http.Hijacker idiom) rather than requiring
// every handler to embed a no-op base struct.
type ConnectionObserver interface {
	ClientConnected(ctx *RequestContext)
	ClientDisconnected(ctx *RequestContext, reason string)
	RootsUpdated(ctx *RequestContext)
}

func asConnectionObserver(h ServiceHandler) (ConnectionObserver, bool) {
	obs, ok := h.(ConnectionObserver)
	return obs, ok
}
