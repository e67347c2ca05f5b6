package dispatchhandlers

import (
	"github.com/google/uuid"
	"github.com/vitalvas/relay/dispatch"
)

// requestIDStoreKey is the per-request store key under which the request
// ID is published for downstream handlers.
const requestIDStoreKey = "relay.request-id"

// RequestIDFromRequest returns the request ID stored by RequestID.
// Returns an empty string if no ID is present.
func RequestIDFromRequest(req *dispatch.Request) string {
	return req.GetString(requestIDStoreKey)
}

// RequestIDConfig configures the Request ID middleware behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// GenerateFunc is an optional callback that returns a new unique ID.
	// It receives the current request, allowing ID generation based on
	// request context. Defaults to GenerateUUIDv4.
	GenerateFunc func(req *dispatch.Request) string

	// TrustIncoming, when true, reuses an existing request ID from the
	// incoming request header instead of generating a new one.
	TrustIncoming bool
}

// RequestID returns a middleware handler that generates or propagates a
// request ID header. The ID is set on the response (for the caller) and
// in the per-request store (for downstream handlers).
func RequestID(cfg RequestIDConfig) dispatch.Handler {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.GenerateFunc
	if generate == nil {
		generate = GenerateUUIDv4
	}

	trustIncoming := cfg.TrustIncoming

	return func(req *dispatch.Request, res *dispatch.Response, next dispatch.Next) {
		id := ""
		if trustIncoming {
			id = req.Header(headerName)
		}

		if id == "" {
			id = generate(req)
		}

		if id != "" {
			res.Header(headerName, id)
			req.Set(requestIDStoreKey, id)
		}

		next()
	}
}

// GenerateUUIDv4 returns a new UUID v4 string.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.4
func GenerateUUIDv4(_ *dispatch.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new UUID v7 string. UUIDs are time-ordered:
// IDs generated later sort lexicographically after earlier ones.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.7
func GenerateUUIDv7(_ *dispatch.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
