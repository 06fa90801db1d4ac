package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/stencilproject/stencil/internal/config"
	"github.com/stencilproject/stencil/internal/domain/items"
	"github.com/stencilproject/stencil/internal/domain/users"
	"github.com/stencilproject/stencil/internal/mcp"
	"github.com/stencilproject/stencil/internal/metrics"
	"github.com/stencilproject/stencil/internal/storage/memory"
)

var mcpTransport string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server, exposing the store to AI
agents as tools, resources, and prompts.

Transports:
  stdio  Read requests from stdin, write responses to stdout (default).
         Suitable for Claude Desktop and other local MCP clients.
  sse    Server-Sent Events over HTTP.
  http   Streamable HTTP, suitable for production deployments.

With the stdio transport all logs go to stderr; stdout carries only
protocol messages.

Examples:
  # Serve over stdio (default)
  stencil mcp

  # Serve over streamable HTTP on the configured MCP port
  stencil mcp --transport http`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "", "MCP transport: stdio, sse, or http (default: stdio)")
}

func runMCPServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if mcpTransport != "" {
		cfg.MCP.Transport = mcpTransport
	}

	// stdout belongs to the protocol; logs must not touch it.
	logger := config.NewStderrLogger(cfg.Logging)

	transportCfg, err := mcp.NewTransportConfig(cfg)
	if err != nil {
		return err
	}

	logger.Info().
		Str("transport", string(transportCfg.Type)).
		Str("environment", cfg.Environment).
		Msg("starting MCP server")

	metrics.Init(Version, GitCommit, BuildDate)

	store := memory.NewRepository()
	if cfg.Seed {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := memory.Seed(seedCtx, store)
		seedCancel()
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		logger.Info().Msg("store seeded with sample data")
	}

	itemsService := items.NewService(store.Items())
	usersService := users.NewService(store.Users())

	server := mcp.NewServer(mcp.Config{
		Name:      cfg.App.Name,
		Version:   Version,
		BaseURL:   cfg.Server.BaseURL,
		Transport: string(transportCfg.Type),
	}, itemsService, usersService, store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = mcp.Serve(ctx, server.MCPServer(), transportCfg, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("MCP server shutdown error")
	}

	logger.Info().Msg("MCP server stopped")
	return nil
}
