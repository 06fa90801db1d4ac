package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestRequestLogging_UsesCorrelationLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := CorrelationID(logger)(RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("X-Request-ID", "req-123")
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	entry := logLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id req-123 in log entry, got %v", entry["request_id"])
	}
	if entry["method"] != "GET" || entry["path"] != "/api/v1/items" {
		t.Errorf("unexpected method/path in log entry: %v", entry)
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("expected status 200 in log entry, got %v", entry["status"])
	}
}

func TestRequestLogging_FallbackWithoutCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/items/abc", nil)
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	entry := logLine(t, &buf)
	if entry["status"] != float64(http.StatusNoContent) {
		t.Errorf("expected status 204 in log entry, got %v", entry["status"])
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("expected no request_id without correlation middleware")
	}
}

func TestRequestLogging_LevelByStatusClass(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"success logs info", http.StatusOK, "info"},
		{"client error logs warn", http.StatusNotFound, "warn"},
		{"server error logs error", http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
			res := httptest.NewRecorder()

			handler.ServeHTTP(res, req)

			entry := logLine(t, &buf)
			if entry["level"] != tt.level {
				t.Errorf("expected level %q for status %d, got %v", tt.level, tt.status, entry["level"])
			}
		})
	}
}

func TestRequestLogging_DefaultsUnwrittenStatusToOK(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()

	handler.ServeHTTP(res, req)

	entry := logLine(t, &buf)
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("expected implicit status 200 in log entry, got %v", entry["status"])
	}
}
