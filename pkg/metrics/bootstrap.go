package metrics

// Bootstrap step outcomes.
const (
	OutcomeCreated = "created" // the step created something
	OutcomeDropped = "dropped" // an index was removed
	OutcomeExists  = "exists"  // the store already held the object
	OutcomeSkipped = "skipped" // the step already ran in this process
	OutcomeError   = "error"
)

// BootstrapMetrics records bootstrap step results and expiry sweeps.
type BootstrapMetrics interface {
	RecordStep(step, outcome string)

	// RecordSweep records rows removed from a collection by the expiry
	// sweeper.
	RecordSweep(collection string, rows int64, err error)
}

var newBootstrapMetrics func() BootstrapMetrics

// RegisterBootstrapMetricsConstructor is called by the Prometheus
// implementation during package initialization.
func RegisterBootstrapMetricsConstructor(constructor func() BootstrapMetrics) {
	newBootstrapMetrics = constructor
}

// NewBootstrapMetrics returns the bootstrap metrics, or nil when metrics are
// disabled.
func NewBootstrapMetrics() BootstrapMetrics {
	if !IsEnabled() || newBootstrapMetrics == nil {
		return nil
	}
	return newBootstrapMetrics()
}
