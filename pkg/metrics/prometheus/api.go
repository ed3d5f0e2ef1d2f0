// Package prometheus provides the Prometheus implementations of the metrics
// interfaces in pkg/metrics. Importing it links them in.
package prometheus

import (
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/apiserve/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterAPIMetricsConstructor(NewAPIMetrics)
	metrics.RegisterBootstrapMetricsConstructor(NewBootstrapMetrics)
}

// apiMetrics is the Prometheus implementation of metrics.APIMetrics.
type apiMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
	routes   prometheus.Gauge
}

var (
	apiMu    sync.Mutex
	apiByReg = map[*prometheus.Registry]*apiMetrics{}
)

// NewAPIMetrics returns the request metrics bound to the current registry.
// Repeated calls share one set of collectors per registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewAPIMetrics() metrics.APIMetrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	apiMu.Lock()
	defer apiMu.Unlock()

	if m, ok := apiByReg[reg]; ok {
		return m
	}

	m := &apiMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		inFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		routes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Name:      "routes",
				Help:      "Number of entries in the dispatch table, fallbacks included",
			},
		),
	}
	apiByReg[reg] = m
	return m
}

func (m *apiMetrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *apiMetrics) InFlight(delta int) {
	if m == nil {
		return
	}
	m.inFlight.Add(float64(delta))
}

func (m *apiMetrics) SetRoutes(n int) {
	if m == nil {
		return
	}
	m.routes.Set(float64(n))
}
