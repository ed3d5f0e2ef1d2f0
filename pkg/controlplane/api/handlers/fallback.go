package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// FaviconName is the file served by Favicon.
const FaviconName = "favicon.ico"

// NewFallback returns the default app. It answers every request, whatever
// its path or method, with a 404 problem.
func NewFallback() http.Handler {
	r := chi.NewRouter()
	notFound := func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, r, "no container serves this path")
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

// Favicon serves favicon.ico from dir. A missing file yields a 404 problem.
func Favicon(dir string) http.Handler {
	path := filepath.Join(dir, FaviconName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := os.Open(path)
		if err != nil {
			NotFound(w, r, "favicon not available")
			return
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			NotFound(w, r, "favicon not available")
			return
		}

		w.Header().Set("Content-Type", "image/x-icon")
		http.ServeContent(w, r, FaviconName, info.ModTime(), f)
	})
}
