package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/internal/telemetry"
	"github.com/marmos91/apiserve/pkg/controlplane/api/handlers"
	"github.com/marmos91/apiserve/pkg/metrics"
	"github.com/marmos91/apiserve/pkg/registry"
)

// Matcher decides whether a table entry serves a request path.
type Matcher interface {
	Match(path string) bool
	String() string
}

type prefixMatcher string

func (m prefixMatcher) Match(path string) bool { return strings.HasPrefix(path, string(m)) }
func (m prefixMatcher) String() string         { return string(m) + "*" }

type exactMatcher string

func (m exactMatcher) Match(path string) bool { return path == string(m) }
func (m exactMatcher) String() string         { return string(m) }

type anyMatcher struct{}

func (anyMatcher) Match(string) bool { return true }
func (anyMatcher) String() string    { return "*" }

// PrefixMatcher matches every path starting with root. There is no segment
// boundary: "/a" also matches "/ab".
func PrefixMatcher(root string) Matcher { return prefixMatcher(root) }

// ExactMatcher matches path and nothing else.
func ExactMatcher(path string) Matcher { return exactMatcher(path) }

// AnyMatcher matches every path.
func AnyMatcher() Matcher { return anyMatcher{} }

// Route is one entry of the dispatch table.
type Route struct {
	// Name is the label used in logs and metrics: the container root, or
	// the fallback's own name.
	Name string

	// QualName is the qualifying name of the container, empty for the
	// synthetic entries.
	QualName string

	Matcher Matcher
	Handler http.Handler
}

// Names of the synthetic entries.
const (
	RouteFavicon  = "/favicon.ico"
	RouteFallback = "default"
)

// FallbackConfig configures the synthetic entries appended to every table.
type FallbackConfig struct {
	// StaticDir holds favicon.ico.
	StaticDir string
}

// Table is the ordered dispatch table. Entries are evaluated in order and
// the first match serves the request; the last entry matches everything.
// A Table is never modified after BuildTable returns.
type Table struct {
	routes  []Route
	metrics metrics.APIMetrics
}

// BuildTable constructs every container of descs, in order, and registers
// each under its root. Two containers with the same root fail the build
// with a *DuplicateRootError. The favicon and the default app are appended
// last.
func BuildTable(descs []registry.Descriptor, opts registry.Options, fallback FallbackConfig) (*Table, error) {
	_, span := telemetry.StartSpan(context.Background(), telemetry.SpanBuildTable)
	defer span.End()

	routes := make([]Route, 0, len(descs)+2)
	seen := make(map[string]string, len(descs))

	for _, desc := range descs {
		c, err := desc.New(opts)
		if err != nil {
			err = fmt.Errorf("failed to create container %s: %w", desc.QualName, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		root := c.Root()
		if root == "" {
			err := fmt.Errorf("container %s has an empty root", desc.QualName)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if existing, dup := seen[root]; dup {
			err := &DuplicateRootError{Root: root, QualName: desc.QualName, Existing: existing}
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		seen[root] = desc.QualName

		routes = append(routes, Route{
			Name:     root,
			QualName: desc.QualName,
			Matcher:  PrefixMatcher(root),
			Handler:  c.Handler(),
		})
		logger.Debug("added container", logger.KeyContainer, desc.QualName, logger.KeyRoot, root)
	}

	routes = append(routes,
		Route{Name: RouteFavicon, Matcher: ExactMatcher(RouteFavicon), Handler: handlers.Favicon(fallback.StaticDir)},
		Route{Name: RouteFallback, Matcher: AnyMatcher(), Handler: handlers.NewFallback()},
	)

	t := &Table{
		routes:  routes,
		metrics: metrics.NewAPIMetrics(),
	}
	if t.metrics != nil {
		t.metrics.SetRoutes(len(routes))
	}
	span.SetAttributes(telemetry.RouteCount(len(routes)))

	return t, nil
}

// Len returns the number of entries, synthetic ones included.
func (t *Table) Len() int {
	return len(t.routes)
}

// Routes returns a copy of the entries in evaluation order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Match returns the first entry whose matcher accepts path. The last entry
// matches everything, so Match always succeeds on a built table.
func (t *Table) Match(path string) Route {
	for _, r := range t.routes {
		if r.Matcher.Match(path) {
			return r
		}
	}
	// unreachable on a table made by BuildTable
	return Route{Name: RouteFallback, Matcher: AnyMatcher(), Handler: handlers.NewFallback()}
}

// ServeHTTP dispatches the request to the first matching entry.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := t.Match(r.URL.Path)

	if lc := logger.FromContext(r.Context()); lc != nil {
		lc.Route = route.Name
	}
	telemetry.SetAttributes(r.Context(), telemetry.HTTPRoute(route.Name))

	if t.metrics == nil {
		route.Handler.ServeHTTP(w, r)
		return
	}

	start := time.Now()
	t.metrics.InFlight(1)
	defer t.metrics.InFlight(-1)

	ww, ok := w.(middleware.WrapResponseWriter)
	if !ok {
		ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	}
	route.Handler.ServeHTTP(ww, r)

	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}
	t.metrics.ObserveRequest(route.Name, r.Method, status, time.Since(start))
}
