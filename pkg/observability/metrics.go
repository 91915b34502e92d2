// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the labtrack service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for CRUD API latencies,
// ranging from 1ms to 10s.
var APIBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labtrack_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "labtrack_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method"},
	)

	// AuthFailuresTotal counts rejected requests by failure reason class.
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labtrack_auth_failures_total",
			Help: "Authentication failures",
		},
		[]string{"reason"},
	)

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labtrack_logins_total",
			Help: "Login attempts",
		},
		[]string{"outcome"},
	)

	// SampleOperationsTotal counts sample service operations by operation
	// and outcome (ok, validation_error, not_found, error).
	SampleOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "labtrack_sample_operations_total",
			Help: "Sample operations",
		},
		[]string{"operation", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthFailuresTotal,
		LoginsTotal,
		SampleOperationsTotal,
	)
}
