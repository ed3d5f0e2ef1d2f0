package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/marmos91/apiserve/internal/logger"
)

// Response represents a standard API response wrapper.
//
// All built-in container responses follow this structure:
//   - Status indicates the overall result ("healthy", "unhealthy", "ok")
//   - Timestamp provides response time for debugging and caching
//   - Data contains the response payload (optional)
//   - Error contains error details when Status indicates failure (optional)
type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
//
// Encoding is done to a buffer first so that an encoding failure can still
// be reported before headers are sent.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", logger.KeyError, err)
		http.Error(w, `{"status":"error","error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// WriteOK writes a 200 response wrapping data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// healthyResponse creates a successful health check response.
func healthyResponse(data any) Response {
	return Response{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// unhealthyResponse creates a failed health check response with an error message.
func unhealthyResponse(errMsg string) Response {
	return Response{
		Status:    "unhealthy",
		Timestamp: time.Now().UTC(),
		Error:     errMsg,
	}
}
