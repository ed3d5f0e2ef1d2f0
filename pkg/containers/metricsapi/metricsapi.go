// Package metricsapi provides the built-in container exposing the Prometheus
// registry under /metrics.
package metricsapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/apiserve/pkg/controlplane/api/handlers"
	"github.com/marmos91/apiserve/pkg/metrics"
	"github.com/marmos91/apiserve/pkg/registry"
)

// QualName is the qualifying name the container is registered under.
const QualName = "apiserve.containers.metricsapi.MetricsContainer"

// Root is the URL root the container is mounted at.
const Root = "/metrics"

// Descriptor returns the registry descriptor of the metrics container.
func Descriptor() registry.Descriptor {
	return registry.Descriptor{
		QualName: QualName,
		Summary:  "Prometheus metrics of the serving process",
		Factory:  New,
	}
}

// Container serves the metrics registry in the Prometheus text format. When
// metrics are disabled every request gets a 503 problem.
type Container struct {
	handler http.Handler
}

// New builds the metrics container. The registry is looked up once, so
// metrics.InitRegistry must run before the dispatch table is built.
func New(_ registry.Options) (registry.Container, error) {
	if !metrics.IsEnabled() {
		return &Container{handler: http.HandlerFunc(disabled)}, nil
	}

	reg := metrics.GetRegistry()
	return &Container{
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, nil
}

// Root implements registry.Container.
func (c *Container) Root() string { return Root }

// Handler implements registry.Container.
func (c *Container) Handler() http.Handler { return c.handler }

func disabled(w http.ResponseWriter, r *http.Request) {
	handlers.ServiceUnavailable(w, r, "metrics are disabled (set metrics.enabled: true)")
}
