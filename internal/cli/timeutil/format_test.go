package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{42 * time.Second, "42s"},
		{3*time.Minute + 5*time.Second, "3m 5s"},
		{2*time.Hour + 30*time.Second, "2h 0m 30s"},
		{72*time.Hour + 30*time.Minute + 15*time.Second, "3d 0h 30m 15s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "1m 0s", FormatUptime("", 60))
	assert.Equal(t, "1h 0m 1s", FormatUptime("1h0m1s", 0))
	assert.Equal(t, "soon", FormatUptime("soon", 0))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "yesterday", FormatTime("yesterday"))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ts.Local().Format(LocalTimeFormat), FormatTime(ts.Format(time.RFC3339)))
}
