// Package handlers provides the HTTP handlers shared by the apiserve
// dispatch table and the built-in containers: RFC 7807 problem responses,
// the fallback app, the favicon and health probes.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC 7807 "problem details" response.
// https://tools.ietf.org/html/rfc7807
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	// If not set, defaults to "about:blank".
	Type string `json:"type,omitempty"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, &Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// WriteRequestProblem writes a problem response whose instance is the
// request path.
func WriteRequestProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblem(w, &Problem{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

func writeProblem(w http.ResponseWriter, p *Problem) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 Not Found problem response for r.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	WriteRequestProblem(w, r, http.StatusNotFound, detail)
}

// MethodNotAllowed writes a 405 Method Not Allowed problem response for r.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request, detail string) {
	WriteRequestProblem(w, r, http.StatusMethodNotAllowed, detail)
}

// ServiceUnavailable writes a 503 Service Unavailable problem response for r.
func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	WriteRequestProblem(w, r, http.StatusServiceUnavailable, detail)
}
