package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/stencilproject/stencil/internal/api"
	"github.com/stencilproject/stencil/internal/config"
	"github.com/stencilproject/stencil/internal/metrics"
	"github.com/stencilproject/stencil/internal/storage/memory"
	"github.com/stencilproject/stencil/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
	noSeed     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Seed the in-memory store with sample data unless disabled
- Serve the versioned JSON API plus health, metrics, and docs endpoints
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  stencil serve

  # Start on a specific host and port
  stencil serve --host 127.0.0.1 --port 9090

  # Start with an empty store
  stencil serve --no-seed

  # Start with custom config file
  stencil serve --config /etc/stencil/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
	serveCmd.Flags().BoolVar(&noSeed, "no-seed", false, "start with an empty store")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if noSeed {
		cfg.Seed = false
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting server")

	metrics.Init(Version, GitCommit, BuildDate)
	logger.Info().Str("version", Version).Msg("metrics initialized")

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

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

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, store, Version, GitCommit, BuildDate),
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sampleStoreMetrics(gCtx, store)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// sampleStoreMetrics refreshes the store record gauges until ctx is done.
func sampleStoreMetrics(ctx context.Context, store *memory.Repository) error {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if count, err := store.Items().Count(ctx); err == nil {
				metrics.StoreRecords.WithLabelValues("items").Set(float64(count))
			}
			if count, err := store.Users().Count(ctx); err == nil {
				metrics.StoreRecords.WithLabelValues("users").Set(float64(count))
			}
		}
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if configPath != "" {
		cfg, err = config.LoadFile(configPath, cfg)
		if err != nil {
			return config.Config{}, err
		}
	}

	// Override logging from flags if provided
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

