package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string

	rootCmd = &cobra.Command{
		Use:   "stencil",
		Short: "Stencil - item and user store with HTTP and MCP surfaces",
		Long: `Stencil serves a CRUD API for catalog items and user accounts from a
shared in-memory store, exposed both as a versioned HTTP API and as a
Model Context Protocol (MCP) server for AI agents.

The server supports:
- Item CRUD with filtering, search, pagination, and bulk creation
- User CRUD with username/email lookup and activation management
- MCP tools, resources, and prompts over stdio, SSE, or streamable HTTP
- RFC 7807 problem responses, Prometheus metrics, and OpenTelemetry tracing`,
		// Run the serve command when no subcommand is given
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (optional, uses env vars by default)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console) (default: json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthcheckCmd)
}
