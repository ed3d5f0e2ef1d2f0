package system

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/apiserve/pkg/controlplane/api/handlers"
	"github.com/marmos91/apiserve/pkg/registry"
)

type fakeHealth struct {
	err error
}

func (f fakeHealth) Healthcheck(context.Context) error { return f.err }

func newContainer(t *testing.T, opts registry.Options) registry.Container {
	t.Helper()
	c, err := Descriptor().New(opts)
	require.NoError(t, err)
	return c
}

func serve(c registry.Container, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestDescriptor(t *testing.T) {
	d := Descriptor()
	assert.Equal(t, QualName, d.QualName)
	assert.NotEmpty(t, d.Summary)

	c := newContainer(t, registry.Options{})
	assert.Equal(t, "/system", c.Root())
}

func TestAlive(t *testing.T) {
	c := newContainer(t, registry.Options{Identity: "node-a"})

	rec := serve(c, http.MethodGet, "/system/alive")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "node-a", resp.Data.(map[string]any)["name"])
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		health registry.HealthChecker
		status int
	}{
		{"store reachable", fakeHealth{}, http.StatusOK},
		{"store down", fakeHealth{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
		{"no store", nil, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContainer(t, registry.Options{Health: tt.health})
			rec := serve(c, http.MethodGet, "/system/ready")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestInfo(t *testing.T) {
	c := newContainer(t, registry.Options{Identity: "node-a", Port: 8443, Secure: true})

	rec := serve(c, http.MethodGet, "/system/info")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Data   Info   `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "node-a", resp.Data.Name)
	assert.Equal(t, 8443, resp.Data.Port)
	assert.True(t, resp.Data.Secure)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.False(t, resp.Data.StartedAt.IsZero())
}

func TestUnknownResource(t *testing.T) {
	c := newContainer(t, registry.Options{})

	rec := serve(c, http.MethodGet, "/system/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handlers.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))

	rec = serve(c, http.MethodPost, "/system/alive")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
