// Package health provides shared types for health check responses.
package health

// Response represents the /system/alive response structure.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Name      string `json:"name"`
		StartedAt string `json:"started_at"`
		Uptime    string `json:"uptime"`
		UptimeSec int64  `json:"uptime_sec"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// InfoResponse represents the /system/info response structure.
type InfoResponse struct {
	Status string `json:"status"`
	Data   struct {
		Name      string `json:"name"`
		Port      int    `json:"port"`
		Secure    bool   `json:"secure"`
		GoVersion string `json:"go_version"`
		StartedAt string `json:"started_at"`
	} `json:"data"`
}
