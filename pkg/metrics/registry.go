// Package metrics defines the metrics recorded by apiserve.
//
// Metrics are opt-in. Until InitRegistry is called every constructor in this
// package returns nil, and callers skip recording on a nil value, so a
// disabled build pays nothing. The Prometheus implementations live in
// pkg/metrics/prometheus and register themselves on import.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Namespace prefixes every apiserve metric name.
const Namespace = "apiserve"

var (
	regMu    sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process registry with Go runtime and process
// collectors and enables metrics. Calling it again returns the existing
// registry.
func InitRegistry() *prometheus.Registry {
	regMu.Lock()
	defer regMu.Unlock()

	if registry != nil {
		return registry
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	regMu.RLock()
	defer regMu.RUnlock()
	return registry != nil
}

// GetRegistry returns the registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	regMu.RLock()
	defer regMu.RUnlock()
	return registry
}

// Reset disables metrics and drops the registry. Tests use it to start from
// a clean slate.
func Reset() {
	regMu.Lock()
	registry = nil
	regMu.Unlock()
}
