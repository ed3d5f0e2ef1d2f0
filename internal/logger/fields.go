package logger

import "log/slog"

// Standard field keys. Use these consistently so log lines can be queried
// across containers.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// HTTP
	KeyRequestID  = "request_id"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyRoute      = "route"
	KeyClientIP   = "client_ip"
	KeyDurationMs = "duration_ms"

	// Server
	KeyPort   = "port"
	KeySecure = "secure"
	KeyName   = "name"
	KeyCert   = "cert_file"

	// Containers
	KeyContainer = "container"
	KeyRoot      = "root"

	// Bootstrap and store
	KeyStep       = "step"
	KeyFolder     = "folder"
	KeyCollection = "collection"
	KeyIndex      = "index"
	KeyTTL        = "ttl_seconds"
	KeyUsername   = "username"
	KeyRows       = "rows"

	KeyError = "error"
)

// RequestID returns a slog.Attr for the request id.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Route returns a slog.Attr for a dispatch table entry name.
func Route(name string) slog.Attr {
	return slog.String(KeyRoute, name)
}

// Container returns a slog.Attr for a container qualifying name.
func Container(qualName string) slog.Attr {
	return slog.String(KeyContainer, qualName)
}

// Root returns a slog.Attr for a container URL root.
func Root(root string) slog.Attr {
	return slog.String(KeyRoot, root)
}

// Step returns a slog.Attr for a bootstrap step name.
func Step(name string) slog.Attr {
	return slog.String(KeyStep, name)
}

// Collection returns a slog.Attr for a backing store collection.
func Collection(name string) slog.Attr {
	return slog.String(KeyCollection, name)
}

// Index returns a slog.Attr for an index name.
func Index(name string) slog.Attr {
	return slog.String(KeyIndex, name)
}

// Port returns a slog.Attr for a TCP port.
func Port(p int) slog.Attr {
	return slog.Int(KeyPort, p)
}

// Err returns a slog.Attr for an error. A nil error yields an empty attr.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
