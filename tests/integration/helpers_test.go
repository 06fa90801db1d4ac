package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stencilproject/stencil/internal/api"
	"github.com/stencilproject/stencil/internal/config"
	"github.com/stencilproject/stencil/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	Context context.Context
	Store   *memory.Repository
	Server  *httptest.Server
	Config  config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	cfg := testConfig()
	store := memory.NewRepository()

	server := httptest.NewServer(api.NewRouter(cfg, testLogger(), store, "test", "none", "none"))
	t.Cleanup(server.Close)

	return &testEnv{
		Context: ctx,
		Store:   store,
		Server:  server,
		Config:  cfg,
	}
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{
			Name: "Stencil Test",
		},
		Server: config.ServerConfig{
			Host:    "127.0.0.1",
			Port:    0,
			BaseURL: "http://localhost",
		},
		MCP: config.MCPConfig{
			Host:      "127.0.0.1",
			Port:      8081,
			Transport: "stdio",
		},
		CORS: config.CORSConfig{
			AllowAllOrigins: true,
		},
		RateLimit: config.RateLimitConfig{
			PublicPerMinute: 1000,
			AgentPerMinute:  1000,
		},
		Logging: config.LoggingConfig{
			Level:  "debug",
			Format: "json",
		},
		Environment: "test",
	}
}

func postJSON(t *testing.T, env *testEnv, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := env.Server.Client().Post(env.Server.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func putJSON(t *testing.T, env *testEnv, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, env.Server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.Server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doGet(t *testing.T, env *testEnv, path string) *http.Response {
	t.Helper()
	resp, err := env.Server.Client().Get(env.Server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doDelete(t *testing.T, env *testEnv, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, env.Server.URL+path, nil)
	require.NoError(t, err)

	resp, err := env.Server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}
