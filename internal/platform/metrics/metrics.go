// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// Business metrics
	RidesBookedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rides_booked_total",
			Help: "Total number of ride-booked events consumed",
		},
		[]string{"vehicle_type"},
	)

	FleetSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_snapshots_total",
			Help: "Vehicle snapshots served, by source",
		},
		[]string{"source"},
	)
)

// RecordHTTP records one finished request.
func RecordHTTP(service, method, path string, status int, took time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(service, method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, path, code).Observe(took.Seconds())
}
