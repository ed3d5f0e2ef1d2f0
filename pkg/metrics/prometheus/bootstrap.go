package prometheus

import (
	"sync"

	"github.com/marmos91/apiserve/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// bootstrapMetrics is the Prometheus implementation of
// metrics.BootstrapMetrics.
type bootstrapMetrics struct {
	steps       *prometheus.CounterVec
	sweptRows   *prometheus.CounterVec
	sweepErrors *prometheus.CounterVec
}

var (
	bootstrapMu    sync.Mutex
	bootstrapByReg = map[*prometheus.Registry]*bootstrapMetrics{}
)

// NewBootstrapMetrics returns the bootstrap metrics bound to the current
// registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewBootstrapMetrics() metrics.BootstrapMetrics {
	reg := metrics.GetRegistry()
	if reg == nil {
		return nil
	}

	bootstrapMu.Lock()
	defer bootstrapMu.Unlock()

	if m, ok := bootstrapByReg[reg]; ok {
		return m
	}

	m := &bootstrapMetrics{
		steps: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "bootstrap_steps_total",
				Help:      "Bootstrap step executions by step and outcome",
			},
			[]string{"step", "outcome"},
		),
		sweptRows: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "expired_rows_total",
				Help:      "Rows removed by the expiry sweeper by collection",
			},
			[]string{"collection"},
		),
		sweepErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "expiry_sweep_errors_total",
				Help:      "Failed expiry sweeps by collection",
			},
			[]string{"collection"},
		),
	}
	bootstrapByReg[reg] = m
	return m
}

func (m *bootstrapMetrics) RecordStep(step, outcome string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(step, outcome).Inc()
}

func (m *bootstrapMetrics) RecordSweep(collection string, rows int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.sweepErrors.WithLabelValues(collection).Inc()
		return
	}
	m.sweptRows.WithLabelValues(collection).Add(float64(rows))
}
