// Package telemetry holds the process-wide logger setup and Prometheus
// collectors. Collectors register against the default registry and are served
// by the router at GET /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// AuditWriteFailures counts audit records that were dropped. The request
	// they belonged to has already been answered.
	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ferret_audit_write_failures_total",
			Help: "Audit records that could not be persisted.",
		},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferret_notifications_created_total",
			Help: "Security notifications created, by alert type.",
		},
		[]string{"alert_type"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferret_logins_total",
			Help: "Token endpoint outcomes: success, invalid_credentials, locked, inactive.",
		},
		[]string{"outcome"},
	)
)
