// Package mcp implements the core protocol engine for the Model Context
// Protocol (MCP): a bidirectional JSON-RPC 2.0 framework by which an AI
// client and a capability-providing server exchange resources, prompts,
// tools, roots, completions, log streams, and LLM sampling requests.
//
// The package covers the wire codec, the pluggable Transport contract,
// request/response correlation, the client and server session state
// machines, capability negotiation, the client-side event stream, and the
// server-side service handler dispatch. Concrete transports live in the
// transport/ subpackages; the demo filesystem server is an illustrative
// consumer, not core, and lives under cmd/mcp-filesystem (with its
// handler in internal/filesystem).
//
// Basic client usage:
//
//	tr, _ := stdio.Dial(ctx, "mcp-filesystem", "serve")
//	client, events, err := mcp.NewClientBuilder(mcp.Implementation{Name: "my-app", Version: "1.0.0"}).
//		WithTransport(tr).
//		WithCapabilities(mcp.ClientCapabilities{Roots: &mcp.RootsCapability{ListChanged: true}}).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Disconnect(ctx)
//	if err := client.Connect(ctx); err != nil {
//		log.Fatal(err)
//	}
//	tools, err := client.ListTools(ctx, "")
package mcp
