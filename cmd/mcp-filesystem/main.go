// Command mcp-filesystem is a demo MCP server exposing read-only access
// to a single directory tree, grounded on original_source/filesystem
// (trimmed to resources/list, resources/read, and a read_file tool) and
// on Bigsy-mcpmu's cmd/mcpmu layout for its cobra CLI surface.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
