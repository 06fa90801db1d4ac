package mcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/stencilproject/stencil/internal/api/middleware"
	"github.com/stencilproject/stencil/internal/config"
)

// TransportType represents the available MCP transport protocols.
type TransportType string

const (
	// TransportStdio uses standard input/output for MCP communication.
	// Best for Claude Desktop, CLI tools, and local development.
	TransportStdio TransportType = "stdio"

	// TransportSSE uses Server-Sent Events for MCP communication.
	TransportSSE TransportType = "sse"

	// TransportHTTP uses Streamable HTTP for MCP communication.
	// Best for production deployments.
	TransportHTTP TransportType = "http"
)

const (
	// DefaultTransport is used when no transport is configured.
	DefaultTransport = TransportStdio

	// GracefulShutdownTimeout bounds the wait for in-flight requests
	// during shutdown of the SSE and HTTP transports.
	GracefulShutdownTimeout = 30 * time.Second
)

// TransportConfig holds configuration for MCP transport selection.
type TransportConfig struct {
	Type TransportType
	Host string
	Port int

	// RateLimit applies to the SSE and HTTP transports (ignored for stdio).
	RateLimit config.RateLimitConfig
}

// NewTransportConfig builds transport settings from the application config.
func NewTransportConfig(cfg config.Config) (*TransportConfig, error) {
	tc := &TransportConfig{
		Type:      DefaultTransport,
		Host:      cfg.MCP.Host,
		Port:      cfg.MCP.Port,
		RateLimit: cfg.RateLimit,
	}

	if cfg.MCP.Transport != "" {
		transport := TransportType(cfg.MCP.Transport)
		switch transport {
		case TransportStdio, TransportSSE, TransportHTTP:
			tc.Type = transport
		default:
			return nil, fmt.Errorf("invalid MCP transport: %s (must be stdio, sse, or http)", cfg.MCP.Transport)
		}
	}

	if tc.Port < 1 || tc.Port > 65535 {
		return nil, fmt.Errorf("invalid MCP port: %d", tc.Port)
	}

	return tc, nil
}

// ServeStdio starts the MCP server using stdio transport. The server reads
// requests from stdin and writes responses to stdout, so logs must go to
// stderr.
func ServeStdio(ctx context.Context, mcpServer *server.MCPServer, logger zerolog.Logger) error {
	logger.Info().Str("transport", "stdio").Msg("starting MCP server")

	errCh := make(chan error, 1)
	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			errCh <- fmt.Errorf("stdio server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("context cancelled, stdio server stopping")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// ServeSSE starts the MCP server using Server-Sent Events transport.
func ServeSSE(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, logger zerolog.Logger) error {
	sseServer := server.NewSSEServer(mcpServer)
	return serveHTTPTransport(ctx, "sse", sseServer, cfg, logger)
}

// ServeHTTP starts the MCP server using Streamable HTTP transport.
func ServeHTTP(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, logger zerolog.Logger) error {
	httpTransport := server.NewStreamableHTTPServer(mcpServer)
	return serveHTTPTransport(ctx, "http", httpTransport, cfg, logger)
}

// Serve starts the MCP server with the configured transport.
func Serve(ctx context.Context, mcpServer *server.MCPServer, cfg *TransportConfig, logger zerolog.Logger) error {
	switch cfg.Type {
	case TransportStdio:
		return ServeStdio(ctx, mcpServer, logger)
	case TransportSSE:
		return ServeSSE(ctx, mcpServer, cfg, logger)
	case TransportHTTP:
		return ServeHTTP(ctx, mcpServer, cfg, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s", cfg.Type)
	}
}

func serveHTTPTransport(ctx context.Context, name string, handler http.Handler, cfg *TransportConfig, logger zerolog.Logger) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logger.Info().Str("transport", name).Str("addr", addr).Msg("starting MCP server")

	wrapped, err := wrapMCPHandler(handler, cfg.RateLimit, logger)
	if err != nil {
		return fmt.Errorf("failed to wrap %s handler: %w", name, err)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           wrapped,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("%s server error: %w", name, err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Str("transport", name).Msg("shutting down MCP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s server shutdown error: %w", name, err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func wrapMCPHandler(handler http.Handler, rateLimitCfg config.RateLimitConfig, logger zerolog.Logger) (http.Handler, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	// Tier must be on the context before the limiter inspects it.
	wrapped := middleware.RateLimit(rateLimitCfg)(handler)
	wrapped = middleware.WithRateLimitTierHandler(middleware.TierAgent)(wrapped)
	wrapped = middleware.RequestLogging(logger)(wrapped)
	wrapped = middleware.CorrelationID(logger)(wrapped)
	return wrapped, nil
}

// WrapHandler exposes the MCP middleware wrapper for embedding in existing routers.
func WrapHandler(handler http.Handler, rateLimitCfg config.RateLimitConfig, logger zerolog.Logger) (http.Handler, error) {
	return wrapMCPHandler(handler, rateLimitCfg, logger)
}

// NewStreamableHTTPHandler creates a streamable HTTP MCP handler for embedding.
func NewStreamableHTTPHandler(mcpServer *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(mcpServer)
}
