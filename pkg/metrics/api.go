package metrics

import "time"

// APIMetrics records request handling by the dispatch table.
type APIMetrics interface {
	// ObserveRequest records one completed request. route is the display
	// name of the table entry that served it, never the raw path.
	ObserveRequest(route, method string, status int, duration time.Duration)

	// InFlight adjusts the number of requests currently being served.
	InFlight(delta int)

	// SetRoutes records how many entries the dispatch table holds.
	SetRoutes(n int)
}

var newAPIMetrics func() APIMetrics

// RegisterAPIMetricsConstructor is called by the Prometheus implementation
// during package initialization.
func RegisterAPIMetricsConstructor(constructor func() APIMetrics) {
	newAPIMetrics = constructor
}

// NewAPIMetrics returns the request metrics, or nil when metrics are disabled
// or no implementation is linked in.
func NewAPIMetrics() APIMetrics {
	if !IsEnabled() || newAPIMetrics == nil {
		return nil
	}
	return newAPIMetrics()
}
