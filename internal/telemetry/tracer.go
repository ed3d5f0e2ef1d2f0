package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on apiserve spans.
const (
	AttrClientIP = "client.ip"

	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"

	AttrContainer     = "apiserve.container"
	AttrContainerRoot = "apiserve.container.root"
	AttrRouteCount    = "apiserve.routes"

	AttrBootstrapStep    = "apiserve.bootstrap.step"
	AttrBootstrapOutcome = "apiserve.bootstrap.outcome"

	AttrCollection = "db.collection.name"
	AttrIndex      = "db.index.name"

	AttrServerPort   = "server.port"
	AttrServerSecure = "server.secure"
)

// Span names.
const (
	SpanHTTPRequest = "http.request"

	SpanResolve    = "registry.resolve"
	SpanBuildTable = "api.build_table"
	SpanServe      = "api.serve"

	// Bootstrap steps are named "bootstrap.<step>".
	SpanBootstrap = "bootstrap"
)

func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// Container tags a span with a container qualifying name.
func Container(qualName string) attribute.KeyValue {
	return attribute.String(AttrContainer, qualName)
}

func ContainerRoot(root string) attribute.KeyValue {
	return attribute.String(AttrContainerRoot, root)
}

func RouteCount(n int) attribute.KeyValue {
	return attribute.Int(AttrRouteCount, n)
}

func BootstrapStep(step string) attribute.KeyValue {
	return attribute.String(AttrBootstrapStep, step)
}

// BootstrapOutcome records what a step did (created, exists, dropped, skipped).
func BootstrapOutcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrBootstrapOutcome, outcome)
}

func Collection(name string) attribute.KeyValue {
	return attribute.String(AttrCollection, name)
}

func Index(name string) attribute.KeyValue {
	return attribute.String(AttrIndex, name)
}

func ServerPort(port int) attribute.KeyValue {
	return attribute.Int(AttrServerPort, port)
}

func ServerSecure(secure bool) attribute.KeyValue {
	return attribute.Bool(AttrServerSecure, secure)
}

// StartBootstrapSpan starts the span for one bootstrap step.
func StartBootstrapSpan(ctx context.Context, step string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{BootstrapStep(step)}, attrs...)
	return Tracer().Start(ctx, SpanBootstrap+"."+step,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(allAttrs...),
	)
}

// StartRequestSpan starts a server span for an incoming HTTP request.
func StartRequestSpan(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{HTTPMethod(method)}, attrs...)
	return Tracer().Start(ctx, SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(allAttrs...),
	)
}
