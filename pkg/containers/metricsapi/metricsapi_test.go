package metricsapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/apiserve/pkg/controlplane/api/handlers"
	"github.com/marmos91/apiserve/pkg/metrics"
	_ "github.com/marmos91/apiserve/pkg/metrics/prometheus"
	"github.com/marmos91/apiserve/pkg/registry"
)

func TestDisabled(t *testing.T) {
	metrics.Reset()
	t.Cleanup(metrics.Reset)

	c, err := Descriptor().New(registry.Options{})
	require.NoError(t, err)
	assert.Equal(t, "/metrics", c.Root())

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, handlers.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"instance":"/metrics"`)
}

func TestEnabled(t *testing.T) {
	metrics.Reset()
	t.Cleanup(metrics.Reset)
	metrics.InitRegistry()

	m := metrics.NewBootstrapMetrics()
	require.NotNil(t, m)
	m.RecordStep("folder", metrics.OutcomeCreated)

	c, err := New(registry.Options{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, "apiserve_bootstrap_steps_total")
}
