// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Inbound HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Graph API
	GraphRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meta_graph_request_duration_seconds",
			Help:    "Duration of Meta Graph API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"}, // outcome: success, api_error, transport_error, timeout, rejected
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meta_graph_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Custom audiences
	AudiencesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "custom_audiences_created_total",
			Help: "Custom audience creation attempts by outcome",
		},
		[]string{"outcome"}, // success, failure
	)

	AudienceBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "custom_audience_batches_total",
			Help: "Custom audience upload batches by outcome",
		},
		[]string{"outcome"}, // success, failure
	)

	AudienceRecordsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "custom_audience_records_accepted_total",
			Help: "Hashed records the platform reported as received",
		},
	)

	AudienceRecordsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "custom_audience_records_dropped_total",
			Help: "Customer records discarded for carrying no identifiers",
		},
	)

	// Insights cache
	InsightsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_cache_hits_total",
			Help: "Insights responses served from cache",
		},
	)

	InsightsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_cache_misses_total",
			Help: "Insights lookups that went to the Graph API",
		},
	)
)
