package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcp-filesystem",
	Short: "A read-only MCP server over a directory tree",
	Long: `mcp-filesystem serves a single directory as MCP resources and
exposes a read_file tool, for clients driven over stdio (the only
transport this demo binds).`,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

// Execute runs the root command, returning any error for main to report.
func Execute() error {
	return rootCmd.Execute()
}
