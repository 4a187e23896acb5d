package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"deflect-hq/roicalc/pkg/config"
)

// HTTPMetrics tracks API traffic.
//
// Metrics:
//   - roicalc_http_requests_total: requests by route pattern, method and status
//   - roicalc_http_request_duration_seconds: request latency by route pattern
//   - roicalc_http_rate_limited_total: requests rejected by the rate limiter
type HTTPMetrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	rateLimited prometheus.Counter
}

// NewHTTPMetrics creates and registers HTTP metrics. These use the "http"
// subsystem regardless of the configured one.
func NewHTTPMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"route"},
		),

		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the per-client rate limiter",
			},
		),
	}

	registry.MustRegister(m.requests, m.duration, m.rateLimited)

	return m
}

// RecordHTTPRequest records a completed request. route should be the router
// pattern, not the raw path, to bound cardinality.
func (c *Collector) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if !c.enabled() {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.http.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.http.duration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordRateLimited records a rejected request.
func (c *Collector) RecordRateLimited() {
	if !c.enabled() {
		return
	}
	c.http.rateLimited.Inc()
}
