// Package filesystem implements a read-only mcp.ServiceHandler over a
// single allowed root directory: resources/list and resources/read
// expose the tree as MCP resources, and a "read_file" tool mirrors the
// same content as a tool call. It illustrates the server-side service
// handler contract (spec §4.7); it is a consumer of the core, not core
// itself, exactly as spec §1 lists "filesystem server" as out of scope.
//
// Grounded on original_source/filesystem/src/filesystem.rs (the
// FilesystemService/is_path_allowed invariant) and its
// tools/read.rs read_file operation, trimmed to the read-only slice
// SPEC_FULL.md calls for; write/move/search tools from the Rust
// original are not carried over.
package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcp "github.com/nkohen/mcpcore"
)

// Handler serves resources/list, resources/read, tools/list, and
// tools/call for files rooted under Root. Every path is checked
// against isPathAllowed before it touches the filesystem, mirroring
// the original's is_path_allowed guard.
type Handler struct {
	Root string
}

// New builds a Handler rooted at root. root is resolved to an absolute
// path so isPathAllowed's prefix check cannot be bypassed with "..".
func New(root string) (*Handler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("filesystem handler: resolve root: %w", err)
	}
	return &Handler{Root: abs}, nil
}

func (h *Handler) isPathAllowed(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(h.Root, abs)
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}

func (h *Handler) uriToPath(uri string) (string, error) {
	rest := strings.TrimPrefix(uri, "file://")
	if rest == uri {
		return "", &mcp.ProtocolError{Reason: "resource uri must begin with file://: " + uri}
	}
	return filepath.Join(h.Root, rest), nil
}

func (h *Handler) pathToURI(path string) string {
	rel, err := filepath.Rel(h.Root, path)
	if err != nil {
		rel = path
	}
	return "file:///" + filepath.ToSlash(rel)
}

// HandleRequest implements mcp.ServiceHandler.
func (h *Handler) HandleRequest(ctx *mcp.RequestContext, req mcp.ServiceRequest) (mcp.ServiceResponse, error) {
	switch r := req.(type) {
	case mcp.ListResourcesParams:
		return h.listResources()
	case mcp.ListResourceTemplatesParams:
		return mcp.ListResourceTemplatesResult{ResourceTemplates: []mcp.ResourceTemplate{}}, nil
	case mcp.ReadResourceParams:
		return h.readResource(r.URI)
	case mcp.ListToolsParams:
		return h.listTools(), nil
	case mcp.CallToolParams:
		return h.callTool(r)
	default:
		return nil, &mcp.InternalError{Reason: fmt.Sprintf("filesystem handler: unsupported request %T", req)}
	}
}

func (h *Handler) listResources() (mcp.ListResourcesResult, error) {
	var resources []mcp.Resource
	err := filepath.WalkDir(h.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		size := info.Size()
		resources = append(resources, mcp.Resource{
			URI:  h.pathToURI(path),
			Name: d.Name(),
			Size: &size,
		})
		return nil
	})
	if err != nil {
		return mcp.ListResourcesResult{}, &mcp.InternalError{Reason: "walk root: " + err.Error()}
	}
	return mcp.ListResourcesResult{Resources: resources}, nil
}

func (h *Handler) readResource(uri string) (mcp.ReadResourceResult, error) {
	path, err := h.uriToPath(uri)
	if err != nil {
		return mcp.ReadResourceResult{}, err
	}
	if !h.isPathAllowed(path) {
		return mcp.ReadResourceResult{}, fmt.Errorf("access to %q is not allowed", uri)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.ReadResourceResult{}, fmt.Errorf("read %q: %w", uri, err)
	}
	return mcp.ReadResourceResult{
		Contents: []mcp.ResourceContent{
			&mcp.TextResourceContent{URI: uri, Text: string(data)},
		},
	}, nil
}

func (h *Handler) listTools() mcp.ListToolsResult {
	return mcp.ListToolsResult{
		Tools: []mcp.Tool{
			{
				Name:        "read_file",
				Description: mcp.Ptr("Read the complete contents of a file within the allowed root directory."),
				InputSchema: mcp.ToolInputSchema{
					Type:     "object",
					Required: []string{"path"},
				},
				Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
			},
		},
	}
}

type readFileArgs struct {
	Path string `json:"path"`
}

func (h *Handler) callTool(params mcp.CallToolParams) (mcp.CallToolResult, error) {
	if params.Name != "read_file" {
		return mcp.NewErrorToolResult("unknown tool: " + params.Name), nil
	}
	var args readFileArgs
	if len(params.Arguments) > 0 {
		if err := unmarshalArgs(params.Arguments, &args); err != nil {
			return mcp.NewErrorToolResult("invalid arguments: " + err.Error()), nil
		}
	}
	if !h.isPathAllowed(filepath.Join(h.Root, args.Path)) {
		return mcp.NewErrorToolResult(fmt.Sprintf("access to %q is not allowed", args.Path)), nil
	}
	data, err := os.ReadFile(filepath.Join(h.Root, args.Path))
	if err != nil {
		return mcp.NewErrorToolResult(fmt.Sprintf("failed to read file %q: %v", args.Path, err)), nil
	}
	return mcp.NewTextToolResult(string(data)), nil
}

// ClientConnected, ClientDisconnected, and RootsUpdated satisfy
// mcp.ConnectionObserver; the demo server only needs the default no-op
// behavior for lifecycle hooks, so they are declared empty rather than
// omitted, matching the contract's optional-hooks design.
func (h *Handler) ClientConnected(ctx *mcp.RequestContext)                   {}
func (h *Handler) ClientDisconnected(ctx *mcp.RequestContext, reason string) {}
func (h *Handler) RootsUpdated(ctx *mcp.RequestContext)                      {}

var _ mcp.ServiceHandler = (*Handler)(nil)
var _ mcp.ConnectionObserver = (*Handler)(nil)

func unmarshalArgs(raw []byte, target interface{}) error {
	return json.Unmarshal(raw, target)
}
