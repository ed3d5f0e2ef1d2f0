package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function restoring the original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		SetFormat("text")
		SetLevel("INFO")
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{"DEBUG", []string{"debug msg", "info msg", "warn msg", "error msg"}, nil},
		{"INFO", []string{"info msg", "warn msg", "error msg"}, []string{"debug msg"}},
		{"WARN", []string{"warn msg", "error msg"}, []string{"debug msg", "info msg"}},
		{"ERROR", []string{"error msg"}, []string{"debug msg", "info msg", "warn msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf, cleanup := captureOutput()
			defer cleanup()

			SetLevel(tt.level)
			Debug("debug msg")
			Info("info msg")
			Warn("warn msg")
			Error("error msg")

			out := buf.String()
			for _, m := range tt.visible {
				assert.Contains(t, out, m)
			}
			for _, m := range tt.hidden {
				assert.NotContains(t, out, m)
			}
		})
	}
}

func TestSetLevel_IgnoresInvalid(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	SetLevel("verbose")
	Info("should be hidden")

	assert.Empty(t, buf.String())
}

func TestTextFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")
	Info("open secure socket on port", KeyPort, 5001, KeyName, "node a")

	out := buf.String()
	assert.Contains(t, out, "[INFO] open secure socket on port")
	assert.Contains(t, out, "port=5001")
	assert.Contains(t, out, `name="node a"`)
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	Info("created index", KeyIndex, "job_args", KeyCollection, "sys_queue")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "created index", entry["msg"])
	assert.Equal(t, "job_args", entry["index"])
	assert.Equal(t, "sys_queue", entry["collection"])
	assert.Contains(t, entry, "time")
}

func TestContextLogging(t *testing.T) {
	t.Run("LogContextInjectsFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetFormat("json")
		lc := &LogContext{
			TraceID:   "abc123",
			RequestID: "req-1",
			Route:     "/orders",
			ClientIP:  "10.0.0.7",
		}
		InfoCtx(WithContext(context.Background(), lc), "request completed", "extra", "value")

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
		assert.Equal(t, "abc123", entry[KeyTraceID])
		assert.Equal(t, "req-1", entry[KeyRequestID])
		assert.Equal(t, "/orders", entry[KeyRoute])
		assert.Equal(t, "10.0.0.7", entry[KeyClientIP])
		assert.Equal(t, "value", entry["extra"])
	})

	t.Run("NilContextHandled", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		require.NotPanics(t, func() {
			//nolint:staticcheck // nil context is deliberate
			InfoCtx(nil, "test message")
		})
		assert.Contains(t, buf.String(), "test message")
	})
}

func TestLogContextCopies(t *testing.T) {
	lc := NewLogContext("127.0.0.1")
	routed := lc.WithRoute("/system")

	assert.Empty(t, lc.Route)
	assert.Equal(t, "/system", routed.Route)
	assert.Equal(t, "127.0.0.1", routed.ClientIP)

	var nilCtx *LogContext
	assert.Nil(t, nilCtx.WithRoute("/x"))
	assert.Zero(t, nilCtx.DurationMs())
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, KeyRoot, Root("/a").Key)
	assert.Equal(t, "/a", Root("/a").Value.String())
	assert.Equal(t, int64(8080), Port(8080).Value.Int64())
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
	assert.True(t, Err(nil).Equal(Err(nil)))
}

func TestConcurrentLogging(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Info("concurrent", "n", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "concurrent"))
}

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "DEBUG", "text", false)
	defer func() {
		_, cleanup := captureOutput()
		cleanup()
	}()

	Debug("hello")
	assert.Contains(t, buf.String(), "[DEBUG] hello")
}
