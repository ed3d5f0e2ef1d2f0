package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans swaps in an in-memory tracer provider for the duration of t.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	UseTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		tracer = nil
		enabled = false
	})
	return rec
}

func attrValue(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "apiserve", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
	assert.NotNil(t, Tracer())
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1.0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(3).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased")
}

func TestNoActiveSpan(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
	require.NotNil(t, SpanFromContext(ctx))

	require.NotPanics(t, func() {
		AddEvent(ctx, "noop")
		RecordError(ctx, nil)
		RecordError(ctx, errors.New("boom"))
		SetStatus(ctx, codes.Error, "failed")
		SetAttributes(ctx, ClientIP("192.168.1.1"))
	})
}

func TestStartBootstrapSpan(t *testing.T) {
	rec := recordSpans(t)

	ctx, span := StartBootstrapSpan(context.Background(), "make_queue", Collection("sys_queue"), Index("job_args"))
	assert.NotEmpty(t, TraceID(ctx))
	assert.NotEmpty(t, SpanID(ctx))
	SetAttributes(ctx, BootstrapOutcome("created"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "bootstrap.make_queue", ended[0].Name())
	assert.Equal(t, trace.SpanKindInternal, ended[0].SpanKind())

	attrs := ended[0].Attributes()
	v, ok := attrValue(attrs, AttrBootstrapStep)
	require.True(t, ok)
	assert.Equal(t, "make_queue", v.AsString())
	v, ok = attrValue(attrs, AttrIndex)
	require.True(t, ok)
	assert.Equal(t, "job_args", v.AsString())
	v, ok = attrValue(attrs, AttrBootstrapOutcome)
	require.True(t, ok)
	assert.Equal(t, "created", v.AsString())
}

func TestRecordErrorSetsStatus(t *testing.T) {
	rec := recordSpans(t)

	ctx, span := StartRequestSpan(context.Background(), "GET", HTTPRoute("/system"))
	RecordError(ctx, errors.New("store unavailable"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, SpanHTTPRequest, ended[0].Name())
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "store unavailable", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name string
		kv   attribute.KeyValue
		key  string
		want any
	}{
		{"ClientIP", ClientIP("10.0.0.1"), AttrClientIP, "10.0.0.1"},
		{"HTTPMethod", HTTPMethod("POST"), AttrHTTPMethod, "POST"},
		{"HTTPStatus", HTTPStatus(404), AttrHTTPStatus, int64(404)},
		{"Container", Container("core4.api.v1.server.CoreApiServer"), AttrContainer, "core4.api.v1.server.CoreApiServer"},
		{"ContainerRoot", ContainerRoot("/core4/api"), AttrContainerRoot, "/core4/api"},
		{"RouteCount", RouteCount(3), AttrRouteCount, int64(3)},
		{"ServerPort", ServerPort(5001), AttrServerPort, int64(5001)},
		{"ServerSecure", ServerSecure(true), AttrServerSecure, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, string(tt.kv.Key))
			assert.Equal(t, tt.want, tt.kv.Value.AsInterface())
		})
	}
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestParseProfileType(t *testing.T) {
	pt, err := parseProfileType("cpu")
	assert.NoError(t, err)
	assert.Equal(t, pyroscope.ProfileCPU, pt)

	_, err = parseProfileType("heap")
	assert.Error(t, err)
}

func TestInitProfilingRejectsUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{Enabled: true, ProfileTypes: []string{"cpu", "heap"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"heap"`)
	assert.False(t, IsProfilingEnabled())
}

func TestProfileTags(t *testing.T) {
	tags := profileTags(ProfilingConfig{ServiceVersion: "1.2.0", Node: "node-a", Secure: true})
	assert.Equal(t, map[string]string{
		"service": "apiserve",
		"version": "1.2.0",
		"scheme":  "https",
		"node":    "node-a",
	}, tags)

	tags = profileTags(ProfilingConfig{ServiceVersion: "dev"})
	assert.Equal(t, "http", tags["scheme"])
	assert.NotContains(t, tags, "node")
}

func TestContentionProfiles(t *testing.T) {
	mutex, block := contentionProfiles([]pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileMutexDuration})
	assert.True(t, mutex)
	assert.False(t, block)

	mutex, block = contentionProfiles([]pyroscope.ProfileType{pyroscope.ProfileBlockCount})
	assert.False(t, mutex)
	assert.True(t, block)
}
