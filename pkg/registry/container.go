// Package registry holds the container model and the process-wide table of
// known containers.
//
// A container is an independently defined API module that owns one URL root.
// Containers are made known to the registry by explicit Register calls at
// process start and are identified by a dotted qualifying name such as
// "apiserve.containers.system.SystemContainer". The discovery filter selects
// the containers a server instance should compose by qualifying-name prefix.
package registry

import (
	"context"
	"net/http"
)

// Container is an API module mounted under a single URL root.
type Container interface {
	// Root is the path prefix the container serves, e.g. "/system". It must
	// be non-empty and unique within one server.
	Root() string

	// Handler dispatches requests under Root. Requests reach it with their
	// full original path.
	Handler() http.Handler
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Healthcheck(ctx context.Context) error
}

// Options are passed to every container factory of one serve call.
type Options struct {
	// Identity is the server name, the hostname unless configured.
	Identity string

	Port   int
	Secure bool

	// Health is the backing store, nil when the container is built without
	// one (tests, listings).
	Health HealthChecker
}

// Factory builds a container.
type Factory func(opts Options) (Container, error)

// Descriptor describes a registered container.
type Descriptor struct {
	// QualName is the dotted qualifying name.
	QualName string

	// Summary is a one-line description shown by listings.
	Summary string

	Factory Factory
}

// New builds the container.
func (d Descriptor) New(opts Options) (Container, error) {
	return d.Factory(opts)
}
