// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() on /metrics is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "formapi"

var (
	LifecyclePhase = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lifecycle_phase",
			Help:      "Current lifecycle phase (0 uninitialized … 5 stopped).",
		})

	ShutdownTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shutdown_total",
			Help:      "Shutdowns by outcome (clean, error, deadline).",
		}, []string{"outcome"})

	SecretLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secret_lookups_total",
			Help:      "Secret store lookups by outcome.",
		}, []string{"outcome"})

	SecretFetchSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "secret_fetch_seconds",
			Help:      "Latency of secret store calls.",
			Buckets:   prometheus.DefBuckets,
		})

	ConfigOverlays = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_overlays_total",
			Help:      "Secret overlays applied or skipped, by field and result.",
		}, []string{"field", "result"})

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"})

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"})

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		})
)

func init() {
	prometheus.MustRegister(
		LifecyclePhase,
		ShutdownTotal,
		SecretLookups,
		SecretFetchSeconds,
		ConfigOverlays,
		HTTPRequests,
		HTTPDuration,
		RateLimited,
	)
}
