package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by container health checks to monitor the server.
It exits with code 0 if the server is healthy, non-zero otherwise.

Exit codes:
  0 - Server is healthy
  1 - Server is unhealthy or unreachable
  2 - Invalid response from server`,
		RunE: runHealthcheck,
	}

	// Flags
	healthcheckTimeout int
	healthcheckURL     string
)

func init() {
	healthcheckCmd.Flags().IntVar(&healthcheckTimeout, "timeout", 5, "timeout in seconds")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
}

// healthResponse matches the response from internal/api/handlers/health.go
type healthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks,omitempty"`
}

// healthCheckError carries the process exit code for a failed check.
type healthCheckError struct {
	code int
	err  error
}

func (e *healthCheckError) Error() string { return e.err.Error() }

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := healthcheckURL
	if url == "" {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		url = fmt.Sprintf("http://localhost:%s/health", port)
	}

	if err := performHealthCheck(url, time.Duration(healthcheckTimeout)*time.Second); err != nil {
		code := 1
		var checkErr *healthCheckError
		if errors.As(err, &checkErr) {
			code = checkErr.code
		}
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(code)
		return err
	}

	return nil
}

// performHealthCheck calls the health endpoint and verifies the reported status.
func performHealthCheck(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &healthCheckError{code: 1, err: fmt.Errorf("creating request: %w", err)}
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return &healthCheckError{code: 1, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &healthCheckError{code: 1, err: fmt.Errorf("unhealthy: status %d", resp.StatusCode)}
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return &healthCheckError{code: 2, err: fmt.Errorf("parsing response: %w", err)}
	}

	if health.Status != "healthy" {
		return &healthCheckError{code: 1, err: fmt.Errorf("unhealthy: status=%s", health.Status)}
	}

	return nil
}
