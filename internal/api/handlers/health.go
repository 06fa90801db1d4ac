package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/stencilproject/stencil/internal/metrics"
	"github.com/stencilproject/stencil/internal/storage/memory"
)

// HealthCheck represents the health status of the server
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	LatencyMs int64                  `json:"latency_ms,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthChecker provides comprehensive health checks for the server
type HealthChecker struct {
	store     *memory.Repository
	version   string
	gitCommit string
}

// NewHealthChecker creates a new health checker with the given dependencies
func NewHealthChecker(store *memory.Repository, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		store:     store,
		version:   version,
		gitCommit: gitCommit,
	}
}

// Health returns a comprehensive health check handler
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// A cancelled request context means the server is shutting down
		select {
		case <-r.Context().Done():
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "shutting_down",
			})
			return
		default:
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]CheckResult)
		checks["store"] = h.checkStore(ctx)

		overallStatus := "healthy"
		statusCode := http.StatusOK
		for _, check := range checks {
			if check.Status == "fail" {
				overallStatus = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			} else if check.Status == "warn" && overallStatus == "healthy" {
				overallStatus = "degraded"
			}
		}

		response := HealthCheck{
			Status:    overallStatus,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// checkStore verifies the in-memory store answers queries on both tables
func (h *HealthChecker) checkStore(ctx context.Context) CheckResult {
	start := time.Now()

	if h.store == nil {
		return CheckResult{
			Status:  "fail",
			Message: "Store not initialized",
			Details: map[string]interface{}{
				"remediation": "Check server wiring; the in-memory store must be constructed before the router",
			},
		}
	}

	itemCount, err := h.store.Items().Count(ctx)
	if err != nil {
		return CheckResult{
			Status:    "fail",
			Message:   "Item table query failed",
			LatencyMs: time.Since(start).Milliseconds(),
			Details:   map[string]interface{}{"error": err.Error()},
		}
	}

	userCount, err := h.store.Users().Count(ctx)
	if err != nil {
		return CheckResult{
			Status:    "fail",
			Message:   "User table query failed",
			LatencyMs: time.Since(start).Milliseconds(),
			Details:   map[string]interface{}{"error": err.Error()},
		}
	}

	metrics.StoreRecords.WithLabelValues("items").Set(float64(itemCount))
	metrics.StoreRecords.WithLabelValues("users").Set(float64(userCount))

	return CheckResult{
		Status:    "pass",
		Message:   "In-memory store operational",
		LatencyMs: time.Since(start).Milliseconds(),
		Details: map[string]interface{}{
			"items": itemCount,
			"users": userCount,
		},
	}
}

// Healthz returns a lightweight liveness response
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz returns a readiness response
func Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ready")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
