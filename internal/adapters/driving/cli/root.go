// Package cli provides the command-line interface for the workplace MCP
// gateway: serving the MCP server, storing provider credentials, and
// printing version information.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/workplace-mcp/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "workplace-mcp",
	Short: "MCP gateway for workplace document search",
	Long: `workplace-mcp is a Model Context Protocol server that lets AI
assistants search, read and summarize documents across Google Drive,
Notion, Slack and Confluence, scoped to each caller's granted
capabilities.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
