// Package system provides the built-in container exposing process health
// and server information under /system.
package system

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/apiserve/pkg/controlplane/api/handlers"
	"github.com/marmos91/apiserve/pkg/registry"
)

// QualName is the qualifying name the container is registered under.
const QualName = "apiserve.containers.system.SystemContainer"

// Root is the URL root the container is mounted at.
const Root = "/system"

// Descriptor returns the registry descriptor of the system container.
func Descriptor() registry.Descriptor {
	return registry.Descriptor{
		QualName: QualName,
		Summary:  "liveness, readiness and server information",
		Factory:  New,
	}
}

// Container serves:
//   - GET /system/alive - Liveness probe
//   - GET /system/ready - Readiness probe (pings the backing store)
//   - GET /system/info  - Server identity and listener settings
type Container struct {
	opts    registry.Options
	started time.Time
	router  chi.Router
}

// New builds the system container.
func New(opts registry.Options) (registry.Container, error) {
	c := &Container{
		opts:    opts,
		started: time.Now().UTC(),
	}

	var health handlers.HealthChecker
	if opts.Health != nil {
		health = opts.Health
	}
	hh := handlers.NewHealthHandler(health, opts.Identity)

	r := chi.NewRouter()
	r.Route(Root, func(r chi.Router) {
		r.Get("/alive", hh.Liveness)
		r.Get("/ready", hh.Readiness)
		r.Get("/info", c.info)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.NotFound(w, r, "unknown system resource")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.MethodNotAllowed(w, r, "method not allowed")
	})
	c.router = r

	return c, nil
}

// Root implements registry.Container.
func (c *Container) Root() string { return Root }

// Handler implements registry.Container.
func (c *Container) Handler() http.Handler { return c.router }

// Info is the body of GET /system/info.
type Info struct {
	Name      string    `json:"name"`
	Port      int       `json:"port"`
	Secure    bool      `json:"secure"`
	GoVersion string    `json:"go_version"`
	StartedAt time.Time `json:"started_at"`
}

func (c *Container) info(w http.ResponseWriter, r *http.Request) {
	handlers.WriteOK(w, Info{
		Name:      c.opts.Identity,
		Port:      c.opts.Port,
		Secure:    c.opts.Secure,
		GoVersion: runtime.Version(),
		StartedAt: c.started,
	})
}
