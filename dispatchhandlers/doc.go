// Package dispatchhandlers provides middleware handlers for the dispatch
// engine. Each handler is built from a config struct and installed with
// Use or UseAt; handlers that can be misconfigured return an error from
// their constructor.
//
// # Request ID
//
// RequestID generates or propagates a request ID header (RFC 9562 UUID
// v4 by default) and publishes it in the per-request store for
// downstream handlers.
//
//	app.Use(dispatchhandlers.RequestID(dispatchhandlers.RequestIDConfig{
//	    TrustIncoming: true,
//	}))
//
// # Security Headers
//
// SecurityHeaders buffers common security response headers
// (X-Content-Type-Options, X-Frame-Options, Referrer-Policy, HSTS and
// friends) so they are flushed with whatever response a later handler
// sends.
//
//	mw, err := dispatchhandlers.SecurityHeaders(dispatchhandlers.SecurityHeadersConfig{
//	    HSTSMaxAge: 31536000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.Use(mw)
//
// # Access Log
//
// AccessLog writes one line per request with method, path, status and
// elapsed time once the downstream chain has run.
//
// # JSON Body
//
// JSONBody decodes an application/json request body into the request's
// Body slot; malformed input is forwarded to the error channel via
// next(err). DecodeBody decodes into a typed destination instead.
package dispatchhandlers
