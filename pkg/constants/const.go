package constants

const (
	// APIPrefix is the base path for all annotation endpoints.
	APIPrefix = "/v1/occurrence/annotation"

	// HealthzPath is probed by Kubernetes liveness checks.
	HealthzPath = "/v1/healthz"

	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"
)
