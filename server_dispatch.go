package mcp

// server_dispatch.go implements the server engine's request routing
// table and notification routing (spec §4.6), in the teacher's style of
// a short design note above the switch that performs it.
//
// Request routing always ends in exactly one of: a handshake reply, a
// not-initialized rejection (-32002), an inline ping reply, an
// invalid-params rejection (-32602), a method-not-found rejection
// (-32601, for unknown methods and for methods whose capability was not
// advertised; no handler call), or a call into the registered
// ServiceHandler whose result or error becomes the wire reply. Nothing here fabricates a result in place of consulting the
// handler (spec §9 open question #3).

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

func (s *Server) handleRequest(ctx context.Context, conn *serverConnection, req *Request) Message {
	if req.Method == MethodInitialize {
		return s.handleInitialize(conn, req)
	}

	if !conn.sess.Initialized() {
		return s.errorResponse(req.ID, ErrCodeNotInitialized, "connection not initialized")
	}

	if req.Method == MethodPing {
		return s.okResponse(req.ID, struct{}{})
	}

	svcReq, capability, err := decodeServiceRequest(req)
	if err != nil {
		return s.errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}
	if svcReq == nil {
		return s.errorResponse(req.ID, ErrCodeMethodNotFound, "unknown method: "+req.Method)
	}
	if capability != "" && !s.serverHasCapability(capability) {
		return s.errorResponse(req.ID, ErrCodeMethodNotFound, "capability not advertised: "+capability)
	}

	if req.Method == MethodResourcesSubscribe {
		conn.sess.subscribe(svcReq.(SubscribeResourceRequest).URI)
	} else if req.Method == MethodResourcesUnsubscribe {
		conn.sess.unsubscribe(svcReq.(UnsubscribeResourceRequest).URI)
	}

	reqCtx := s.requestContext(conn)
	result, err := s.opts.handler.HandleRequest(reqCtx, svcReq)
	if err != nil {
		if se, ok := AsServerError(err); ok {
			return s.errorResponse(req.ID, se.Code, se.Message)
		}
		return s.errorResponse(req.ID, ErrCodeInternalError, err.Error())
	}
	return s.okResponse(req.ID, result)
}

func (s *Server) serverHasCapability(name string) bool {
	switch name {
	case "resources":
		return s.opts.capabilities.hasResources()
	case "resources.subscribe":
		return s.opts.capabilities.hasResourcesSubscribe()
	case "prompts":
		return s.opts.capabilities.hasPrompts()
	case "tools":
		return s.opts.capabilities.hasTools()
	case "logging":
		return s.opts.capabilities.hasLogging()
	case "completions":
		return s.opts.capabilities.hasCompletions()
	default:
		return true
	}
}

// decodeServiceRequest maps one inbound Request onto its ServiceRequest
// variant and the capability name that gates it (empty if ungated). A
// nil, nil return means the method is unknown to the routing table.
func decodeServiceRequest(req *Request) (ServiceRequest, string, error) {
	switch req.Method {
	case MethodResourcesList:
		var p ListResourcesParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "resources", nil
	case MethodResourcesTemplatesList:
		var p ListResourceTemplatesParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "resources", nil
	case MethodResourcesRead:
		var p ReadResourceParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "resources", nil
	case MethodResourcesSubscribe:
		var p SubscribeResourceParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return SubscribeResourceRequest{URI: p.URI}, "resources.subscribe", nil
	case MethodResourcesUnsubscribe:
		var p SubscribeResourceParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return UnsubscribeResourceRequest{URI: p.URI}, "resources.subscribe", nil
	case MethodPromptsList:
		var p ListPromptsParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "prompts", nil
	case MethodPromptsGet:
		var p GetPromptParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "prompts", nil
	case MethodToolsList:
		var p ListToolsParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "tools", nil
	case MethodToolsCall:
		var p CallToolParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "tools", nil
	case MethodLoggingSetLevel:
		var p SetLevelParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "logging", nil
	case MethodCompletionComplete:
		var p CompleteParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, "", err
		}
		return p, "completions", nil
	default:
		return nil, "", nil
	}
}

func decodeParams(raw json.RawMessage, target interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}

func (s *Server) handleInitialize(conn *serverConnection, req *Request) Message {
	if conn.sess.State() != StateConnecting && conn.sess.State() != StateDisconnected {
		return s.errorResponse(req.ID, ErrCodeInvalidRequest, "initialize called twice")
	}
	conn.sess.setState(StateInitializing)

	var params InitializeParams
	if err := decodeParams(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, ErrCodeInvalidParams, err.Error())
	}

	conn.sess.setPeer(PeerInfo{Implementation: params.ClientInfo, ProtocolVersion: params.ProtocolVersion})
	conn.sess.setClientCaps(params.Capabilities)

	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      s.opts.identity,
		Capabilities:    s.opts.capabilities,
		Instructions:    s.opts.instructions,
	}
	return s.okResponse(req.ID, result)
}

func (s *Server) handleNotification(ctx context.Context, conn *serverConnection, note *Notification) {
	switch note.Method {
	case NotificationInitialized:
		if conn.sess.State() != StateInitializing {
			s.opts.logger.Warn("notifications/initialized received out of order", zap.String("connection", conn.id))
			return
		}
		conn.sess.setInitialized(true)
		conn.sess.setState(StateInitialized)
		if obs, ok := asConnectionObserver(s.opts.handler); ok {
			obs.ClientConnected(s.requestContext(conn))
		}

	case NotificationCancelled:
		var params CancelledParams
		if err := decodeParams(note.Params, &params); err != nil {
			s.opts.logger.Warn("malformed notifications/cancelled", zap.Error(err))
			return
		}
		if obs, ok := s.opts.handler.(CancellationObserver); ok {
			reason := ""
			if params.Reason != nil {
				reason = *params.Reason
			}
			obs.RequestCancelled(s.requestContext(conn), params.RequestID, reason)
		}

	case NotificationProgress:
		var params ProgressParams
		if err := decodeParams(note.Params, &params); err != nil {
			s.opts.logger.Warn("malformed notifications/progress", zap.Error(err))
			return
		}
		if obs, ok := s.opts.handler.(ProgressObserver); ok {
			obs.ProgressReported(s.requestContext(conn), params.ProgressToken, params.Progress, params.Total, params.Message)
		}

	case NotificationRootsListChanged:
		clientCaps, _ := conn.sess.ClientCaps()
		if !clientCaps.HasRootsListChanged() {
			s.opts.logger.Warn("roots list_changed notification without capability", zap.String("connection", conn.id))
			return
		}
		if obs, ok := asConnectionObserver(s.opts.handler); ok {
			obs.RootsUpdated(s.requestContext(conn))
		}

	default:
		s.opts.logger.Warn("unknown notification method", zap.String("method", note.Method))
	}
}

// CancellationObserver is an optional hook a ServiceHandler may
// implement to react to a peer-issued notifications/cancelled; the
// handler is expected to stop producing a response for that id (no
// wire-level reply is generated by the engine either way).
type CancellationObserver interface {
	RequestCancelled(ctx *RequestContext, requestID ID, reason string)
}

// ProgressObserver is an optional hook a ServiceHandler may implement to
// react to a peer-issued notifications/progress.
type ProgressObserver interface {
	ProgressReported(ctx *RequestContext, token ID, progress float64, total *float64, message *string)
}
