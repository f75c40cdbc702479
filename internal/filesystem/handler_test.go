package filesystem_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcp "github.com/nkohen/mcpcore"
	"github.com/nkohen/mcpcore/internal/filesystem"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestListResourcesWalksRoot(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "a.txt", "hello")

	h, err := filesystem.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := h.HandleRequest(&mcp.RequestContext{}, mcp.ListResourcesParams{})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	result, ok := resp.(mcp.ListResourcesResult)
	if !ok {
		t.Fatalf("unexpected response type %T", resp)
	}
	if len(result.Resources) != 1 || result.Resources[0].Name != "a.txt" {
		t.Fatalf("unexpected resources: %+v", result.Resources)
	}
}

func TestReadResourceRejectsEscapedPath(t *testing.T) {
	dir := t.TempDir()
	h, err := filesystem.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = h.HandleRequest(&mcp.RequestContext{}, mcp.ReadResourceParams{URI: "file://../../etc/passwd"})
	if err == nil {
		t.Fatal("expected error reading outside root")
	}
}

func TestCallToolReadFile(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "note.txt", "contents")

	h, err := filesystem.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	args, _ := json.Marshal(map[string]string{"path": "note.txt"})
	resp, err := h.HandleRequest(&mcp.RequestContext{}, mcp.CallToolParams{Name: "read_file", Arguments: args})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	result, ok := resp.(mcp.CallToolResult)
	if !ok {
		t.Fatalf("unexpected response type %T", resp)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok || text.Text != "contents" {
		t.Fatalf("unexpected content: %+v", result.Content)
	}
}

func TestCallToolReadFileOutsideRootIsDenied(t *testing.T) {
	dir := t.TempDir()
	h, err := filesystem.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	args, _ := json.Marshal(map[string]string{"path": "../secret.txt"})
	resp, err := h.HandleRequest(&mcp.RequestContext{}, mcp.CallToolParams{Name: "read_file", Arguments: args})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	result := resp.(mcp.CallToolResult)
	if !result.IsError {
		t.Fatal("expected tool-level error for escaped path")
	}
}
