// Package timeutil formats server timestamps and uptimes for CLI output.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat is the layout of local times printed by the CLI.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatDuration renders d as "3d 0h 30m 15s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatUptime renders an uptime reported by the server. Seconds win when
// set; otherwise the Go duration string is parsed, and returned as is when
// it does not parse.
func FormatUptime(uptime string, seconds int64) string {
	if seconds > 0 {
		return FormatDuration(time.Duration(seconds) * time.Second)
	}
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}
	return FormatDuration(d)
}

// FormatTime converts an RFC3339 timestamp to local time. Unparseable input
// is returned unchanged.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(LocalTimeFormat)
}
