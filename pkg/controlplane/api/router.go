package api

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/internal/telemetry"
)

// NewRouter wraps the dispatch table with the middleware stack:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request logging and tracing using the internal logger and telemetry
//   - Panic recovery to prevent a failing container from taking the server down
//
// The table does all routing itself; chi only contributes the middleware.
func NewRouter(table *Table) http.Handler {
	return chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
	).Handler(table)
}

// isQuietPath returns true for requests logged at DEBUG level.
func isQuietPath(path string) bool {
	return path == RouteFavicon
}

// clientIP strips the port from a RemoteAddr. RealIP may already have
// replaced it with a bare address.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// requestLogger is a middleware that traces and logs requests using the
// internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, client
//   - Request completion (INFO level): method, path, route, status, duration
//   - Favicon requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lc := logger.NewLogContext(clientIP(r.RemoteAddr))
		lc.RequestID = middleware.GetReqID(r.Context())

		ctx, span := telemetry.StartRequestSpan(r.Context(), r.Method,
			telemetry.ClientIP(lc.ClientIP),
		)
		defer span.End()
		lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
		ctx = logger.WithContext(ctx, lc)
		r = r.WithContext(ctx)

		logger.DebugCtx(ctx, "request started",
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		span.SetAttributes(telemetry.HTTPStatus(status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		logArgs := []any{
			logger.KeyMethod, r.Method,
			logger.KeyPath, r.URL.Path,
			logger.KeyStatus, status,
			"bytes", ww.BytesWritten(),
			logger.KeyDurationMs, lc.DurationMs(),
		}

		if isQuietPath(r.URL.Path) {
			logger.DebugCtx(ctx, "request completed", logArgs...)
		} else {
			logger.InfoCtx(ctx, "request completed", logArgs...)
		}
	})
}
