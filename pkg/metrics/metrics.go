// Package metrics provides Prometheus metrics for the appearance service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appearance"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	gatherer prometheus.Gatherer

	// Computation metrics
	Computations   *prometheus.CounterVec
	OverlapSeconds prometheus.Histogram

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all metrics on reg. Pass prometheus.NewRegistry() in tests.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		Computations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computations_total",
			Help:      "Total number of appearance computations by outcome",
		}, []string{"outcome"}),
		OverlapSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overlap_seconds",
			Help:      "Joint presence per lesson in seconds",
			Buckets:   []float64{0, 60, 300, 600, 1200, 1800, 2700, 3600, 5400, 7200},
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordAppearance records a successful computation. matched is nil when no answer was given.
func (m *Metrics) RecordAppearance(seconds int64, matched *bool) {
	outcome := "computed"
	if matched != nil {
		if *matched {
			outcome = "matched"
		} else {
			outcome = "mismatched"
		}
	}
	m.Computations.WithLabelValues(outcome).Inc()
	m.OverlapSeconds.Observe(float64(seconds))
}

// RecordFailure records a computation or persistence failure.
func (m *Metrics) RecordFailure(reason string) {
	m.Computations.WithLabelValues("failed_" + reason).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}
