package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all stencil metrics
const namespace = "stencil"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// StoreRecords tracks the current number of records per store table
var StoreRecords = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_records",
		Help:      "Current number of records held in the in-memory store",
	},
	[]string{"table"},
)

// MCPToolCallsTotal counts MCP tool invocations by tool name and outcome
var MCPToolCallsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mcp_tool_calls_total",
		Help:      "Total number of MCP tool invocations",
	},
	[]string{"tool", "status"}, // status: success|error
)

// MCPResourceReadsTotal counts MCP resource reads by resource URI
var MCPResourceReadsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mcp_resource_reads_total",
		Help:      "Total number of MCP resource reads",
	},
	[]string{"uri"},
)

// Init initializes the metrics registry and sets version information
func Init(version, commit, buildDate string) {
	// Register default Go metrics (memory, goroutines, GC, etc.)
	Registry.MustRegister(collectors.NewGoCollector())

	// Register process metrics (CPU, memory, file descriptors)
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Set application version info (value is always 1, info is in labels)
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
