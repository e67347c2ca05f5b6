package dispatch

import (
	"context"
	"net/http"
	"net/url"
)

// Request is the per-request read surface handed to handlers. It is
// created fresh at request arrival, exclusively owned by the in-flight
// dispatch, and discarded at response completion. It is never pooled or
// reused.
type Request struct {
	// Method is the HTTP request method token.
	Method string

	// Path is the normalized request path as seen by the current router.
	// Inside a mounted router the mount prefix is stripped from this view;
	// it is restored when control returns to the parent.
	Path string

	// RawPath is the normalized path as received, unaffected by mounting.
	RawPath string

	// Params holds the route parameters bound by the matched route
	// pattern. Nil until a route has matched; middleware running before
	// the route handlers observes no parameters.
	Params *Params

	// Body is an opaque slot populated by a body-parsing collaborator
	// and read as a typed value by later handlers. The dispatch engine
	// never interprets it.
	Body any

	query map[string]string
	store map[string]any
	ctx   context.Context
	raw   *http.Request

	// owner is the sequencer currently driving this request. Mount
	// adapters save and restore it around child dispatches so that a
	// child completing after a suspension can resolve the parent chain.
	owner *sequencer
}

// newRequest builds a Request from an inbound http.Request. The query
// map keeps the last value for duplicate keys.
func newRequest(r *http.Request, ctx context.Context, path string) *Request {
	req := &Request{
		Method:  r.Method,
		Path:    path,
		RawPath: path,
		query:   parseQuery(r.URL),
		ctx:     ctx,
		raw:     r,
	}
	return req
}

// detached returns a request view carrying only the immutable
// as-received fields: method, raw path, query, context and the
// underlying request. The deadline watchdog hands it to the timeout
// error channel so error handlers never share Path, Params, Body or the
// store with the abandoned chain, which may still be executing handler
// code. Chain-accumulated state belongs to that chain alone.
func (r *Request) detached() *Request {
	return &Request{
		Method:  r.Method,
		Path:    r.RawPath,
		RawPath: r.RawPath,
		query:   r.query,
		ctx:     r.ctx,
		raw:     r.raw,
	}
}

// parseQuery flattens the URL query into a string map, last value wins
// on duplicate keys.
func parseQuery(u *url.URL) map[string]string {
	if u == nil || u.RawQuery == "" {
		return nil
	}
	values := u.Query()
	q := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			q[key] = vals[len(vals)-1]
		}
	}
	return q
}

// Query returns the query parameter value for key, last value wins when
// the key is repeated. Returns the empty string if the key is absent.
func (r *Request) Query(key string) string {
	return r.query[key]
}

// QueryDefault returns the query parameter for key, or def if absent.
func (r *Request) QueryDefault(key, def string) string {
	if v, ok := r.query[key]; ok {
		return v
	}
	return def
}

// QueryMap returns a copy of the flattened query parameters.
func (r *Request) QueryMap() map[string]string {
	m := make(map[string]string, len(r.query))
	for k, v := range r.query {
		m[k] = v
	}
	return m
}

// Param returns the route parameter bound under name, or the empty
// string if absent. Route parameter values are always strings.
func (r *Request) Param(name string) string {
	return r.Params.Get(name)
}

// Header returns the first request header value for the given name.
func (r *Request) Header(name string) string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Header.Get(name)
}

// Context returns the dispatch context. It carries the request deadline
// and is canceled when the dispatcher abandons the request, so blocking
// handlers can release held resources.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// Raw returns the underlying http.Request for collaborators that need
// direct access, such as body parsers.
func (r *Request) Raw() *http.Request {
	return r.raw
}

// Set stores a value in the per-request store under key. The store is
// owned by the in-flight dispatch and is not synchronized.
func (r *Request) Set(key string, value any) {
	if r.store == nil {
		r.store = make(map[string]any)
	}
	r.store[key] = value
}

// Get returns the stored value for key and whether it exists.
func (r *Request) Get(key string) (any, bool) {
	v, ok := r.store[key]
	return v, ok
}

// GetString returns the stored value for key as a string, or the empty
// string if absent or not a string.
func (r *Request) GetString(key string) string {
	if v, ok := r.store[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
