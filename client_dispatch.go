package mcp

// client_dispatch.go documents and implements the client engine's inbound
// receive loop (spec §4.5 "Inbound dispatch"), grounded on the teacher's
// dispatch.go convention of a short design note above the routing code.
//
// Every decoded inbound message falls into exactly one of three buckets:
//
//   - Response / ErrorResponse: matched against the correlation table by
//     id and delivered to the waiter. An id with no pending slot is a
//     late or duplicate response; it is logged and discarded, never
//     treated as fatal.
//   - Server-to-client request (ping, roots/list, sampling/createMessage):
//     answered inline or forwarded to an application-supplied handler,
//     and ALWAYS produces a Response or ErrorResponse back over the
//     transport — there is no stubbed dead end here (spec §9 open
//     question #1, resolved).
//   - Notification: translated to the matching ClientEvent and pushed to
//     the event stream, preserving wire arrival order. A list-changed
//     notification whose capability was not advertised by the server is
//     a ProtocolError; the session survives and the error is surfaced as
//     an EventError rather than a crash.
//
// A *TransportError from Receive terminates the loop and the session.

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

func (c *Client) receiveLoop(ctx context.Context) {
	defer close(c.receiveDone)
	for {
		msg, err := c.opts.transport.Receive(ctx)
		if err != nil {
			// Parse/Protocol errors are per-message: logged and skipped,
			// the session survives (spec §7 policy). Anything else
			// (*TransportError, context cancellation) is fatal.
			if isPerMessageError(err) {
				c.logger.Warn("skipping malformed inbound message", zap.Error(err))
				c.emitError(err)
				continue
			}
			c.logger.Error("transport receive failed", zap.Error(err))
			c.teardown(err.Error())
			return
		}
		if msg == nil {
			c.teardown("transport closed")
			return
		}
		c.dispatchInbound(ctx, msg)
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func isPerMessageError(err error) bool {
	switch err.(type) {
	case *ParseError, *ProtocolError:
		return true
	default:
		return false
	}
}

func (c *Client) dispatchInbound(ctx context.Context, msg Message) {
	switch m := msg.(type) {
	case *Response:
		if !c.corr.complete(m.ID, m.Result, nil) {
			c.logger.Warn("late or duplicate response", zap.String("id", m.ID.String()))
		}
	case *ErrorResponse:
		if !c.corr.complete(m.ID, nil, m.Error) {
			c.logger.Warn("late or duplicate error response", zap.String("id", m.ID.String()))
		}
	case *Request:
		c.handleInboundRequest(ctx, m)
	case *Notification:
		c.handleInboundNotification(m)
	case BatchResponse:
		for _, elem := range m {
			c.dispatchInbound(ctx, elem)
		}
	case BatchRequest:
		for _, elem := range m {
			c.dispatchInbound(ctx, elem)
		}
	}
}

// handleInboundRequest answers a server-to-client request. Every branch
// sends a Response or ErrorResponse; there is no path that leaves the
// server waiting forever.
func (c *Client) handleInboundRequest(ctx context.Context, req *Request) {
	switch req.Method {
	case MethodPing:
		c.replyResult(ctx, req.ID, struct{}{})

	case MethodRootsList:
		caps := c.opts.capabilities
		if !caps.HasRoots() {
			c.replyError(ctx, req.ID, ErrCodeMethodNotFound, "client did not advertise roots capability")
			return
		}
		select {
		case c.events <- &EventRootsChanged{}:
		default:
			c.events <- &EventRootsChanged{}
		}
		if c.opts.rootsHandler != nil {
			roots, err := c.opts.rootsHandler(&RequestContext{})
			if err != nil {
				c.replyError(ctx, req.ID, ErrCodeInternalError, err.Error())
				return
			}
			c.replyResult(ctx, req.ID, ListRootsResult{Roots: roots})
			return
		}
		if c.opts.autoAcknowledgeRootsChanged {
			c.replyResult(ctx, req.ID, ListRootsResult{Roots: []Root{}})
			return
		}
		c.replyError(ctx, req.ID, ErrCodeMethodNotFound, "no roots handler registered")

	case MethodSamplingCreateMessage:
		caps := c.opts.capabilities
		if !caps.HasSampling() || c.opts.samplingHandler == nil {
			c.replyError(ctx, req.ID, ErrCodeMethodNotFound, "client did not advertise sampling capability")
			return
		}
		var params CreateMessageParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				c.replyError(ctx, req.ID, ErrCodeInvalidParams, err.Error())
				return
			}
		}
		result, err := c.opts.samplingHandler(&RequestContext{}, params)
		if err != nil {
			c.replyError(ctx, req.ID, ErrCodeInternalError, err.Error())
			return
		}
		c.replyResult(ctx, req.ID, result)

	default:
		c.replyError(ctx, req.ID, ErrCodeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (c *Client) replyResult(ctx context.Context, id ID, result interface{}) {
	resp, err := NewResponse(id, result)
	if err != nil {
		c.logger.Error("failed to build response", zap.Error(err))
		return
	}
	if err := c.opts.transport.Send(ctx, resp); err != nil {
		c.logger.Error("failed to send response", zap.Error(err))
	}
}

func (c *Client) replyError(ctx context.Context, id ID, code int, message string) {
	resp, err := NewErrorResponse(id, code, message, nil)
	if err != nil {
		c.logger.Error("failed to build error response", zap.Error(err))
		return
	}
	if err := c.opts.transport.Send(ctx, resp); err != nil {
		c.logger.Error("failed to send error response", zap.Error(err))
	}
}

func (c *Client) handleInboundNotification(note *Notification) {
	caps, haveCaps := c.sess.ServerCaps()

	switch note.Method {
	case NotificationResourcesListChanged:
		if !haveCaps {
			c.emitError(&ProtocolError{Reason: "resources list_changed notification received before initialize completed"})
			return
		}
		if !caps.hasResourcesListChanged() {
			c.emitError(&ProtocolError{Reason: "resources list_changed notification without capability"})
			return
		}
		c.emit(&EventResourcesChanged{})

	case NotificationResourcesUpdated:
		var params ResourceUpdatedParams
		if err := unmarshalNotificationParams(note, &params); err != nil {
			c.emitError(err)
			return
		}
		c.emit(&EventResourceUpdated{URI: params.URI})

	case NotificationPromptsListChanged:
		if !haveCaps {
			c.emitError(&ProtocolError{Reason: "prompts list_changed notification received before initialize completed"})
			return
		}
		if !caps.hasPromptsListChanged() {
			c.emitError(&ProtocolError{Reason: "prompts list_changed notification without capability"})
			return
		}
		c.emit(&EventPromptsChanged{})

	case NotificationToolsListChanged:
		if !haveCaps {
			c.emitError(&ProtocolError{Reason: "tools list_changed notification received before initialize completed"})
			return
		}
		if !caps.hasToolsListChanged() {
			c.emitError(&ProtocolError{Reason: "tools list_changed notification without capability"})
			return
		}
		c.emit(&EventToolsChanged{})

	case NotificationMessage:
		var params LogMessageParams
		if err := unmarshalNotificationParams(note, &params); err != nil {
			c.emitError(err)
			return
		}
		c.emit(&EventLogMessage{Level: params.Level, Logger: params.Logger, Data: params.Data})

	case NotificationProgress:
		var params ProgressParams
		if err := unmarshalNotificationParams(note, &params); err != nil {
			c.emitError(err)
			return
		}
		reqID, _ := c.corr.progressRequestID(params.ProgressToken)
		c.emit(&EventProgress{RequestID: reqID, Token: params.ProgressToken, Progress: params.Progress, Total: params.Total, Message: params.Message})

	case NotificationCancelled:
		// Cancellation is a hint; the engine has no request-side action
		// to take for a peer-initiated cancel on the client.

	default:
		c.logger.Warn("unknown notification method", zap.String("method", note.Method))
	}
}

func unmarshalNotificationParams(note *Notification, target interface{}) error {
	if len(note.Params) == 0 {
		return &ParseError{Reason: note.Method + " missing params"}
	}
	if err := json.Unmarshal(note.Params, target); err != nil {
		return &ParseError{Reason: "invalid params for " + note.Method, Cause: err}
	}
	return nil
}

func (c *Client) emit(ev ClientEvent) {
	c.events <- ev
}

func (c *Client) emitError(err error) {
	c.logger.Warn("protocol error on inbound message", zap.Error(err))
	c.events <- &EventError{Err: err}
}
