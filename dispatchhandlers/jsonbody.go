package dispatchhandlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/vitalvas/relay/dispatch"
)

// defaultMaxBodyBytes bounds the request body a JSONBody handler is
// willing to read.
const defaultMaxBodyBytes = 1 << 20 // 1 MiB

// JSONBodyConfig configures the JSON body parsing middleware behaviour.
type JSONBodyConfig struct {
	// MaxBodyBytes limits the number of body bytes read. Bodies larger
	// than the limit fail the request through the error channel.
	// Defaults to 1 MiB.
	MaxBodyBytes int64

	// DisallowUnknownFields has no effect when decoding into the untyped
	// body slot; it is consulted only by DecodeBody.
	DisallowUnknownFields bool
}

// JSONBody returns a middleware handler that decodes an
// application/json request body into the request's Body slot as untyped
// JSON (map[string]any, []any, string, float64, bool or nil). Requests
// without a body or with a different media type pass through untouched.
// Malformed JSON is forwarded to the error channel via next(err).
func JSONBody(cfg JSONBodyConfig) dispatch.Handler {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}

	return func(req *dispatch.Request, _ *dispatch.Response, next dispatch.Next) {
		raw := req.Raw()
		if raw == nil || raw.Body == nil || raw.Body == http.NoBody {
			next()
			return
		}
		if !isJSONContentType(raw.Header.Get("Content-Type")) {
			next()
			return
		}

		data, err := io.ReadAll(io.LimitReader(raw.Body, maxBytes+1))
		if err != nil {
			next(fmt.Errorf("json body: read: %w", err))
			return
		}
		if int64(len(data)) > maxBytes {
			next(fmt.Errorf("json body: exceeds %d bytes", maxBytes))
			return
		}
		if len(data) == 0 {
			next()
			return
		}

		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			next(fmt.Errorf("json body: %w", err))
			return
		}

		req.Body = v
		next()
	}
}

// DecodeBody decodes an application/json request body directly into dst,
// for handlers that want a typed value instead of the untyped Body slot.
// It reads the underlying request body and can be called once per
// request.
func DecodeBody(req *dispatch.Request, dst any, cfg JSONBodyConfig) error {
	raw := req.Raw()
	if raw == nil || raw.Body == nil {
		return fmt.Errorf("json body: no body")
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}

	dec := json.NewDecoder(io.LimitReader(raw.Body, maxBytes))
	if cfg.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("json body: %w", err)
	}

	return nil
}

// isJSONContentType reports whether the media type is JSON, including
// +json structured syntax suffixes such as application/problem+json.
func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
