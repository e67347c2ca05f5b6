package dispatch

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"sync"
)

// headerField is one buffered response header. Fields are kept in set
// order and flushed to the wire in that order when the response is sent.
type headerField struct {
	name  string
	value string
}

// Response is the per-request write surface handed to handlers. Status
// and headers are buffered until a terminal write (Send, Text, JSON, XML
// or End) finalizes the response; once sent, any further write attempt
// is a contract violation, reported and refused rather than performed.
//
// Response methods are safe for use from the goroutine currently driving
// the dispatch, including after a suspension point. After the request
// deadline elapses the dispatcher revokes the response so that a stalled
// handler's eventual write can never reach the client.
type Response struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	status  int
	headers []headerField
	sent    bool
	revoked bool

	// report is invoked with detected contract violations. Set by the
	// dispatcher; nil disables reporting.
	report func(ViolationKind)

	// onSent is invoked once, outside the lock, after the response is
	// finalized. The dispatcher uses it to settle the chain when a
	// handler writes a response without calling next, including from
	// another goroutine after a suspension point.
	onSent func()
}

func newResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Status sets the response status code. It has no effect after the
// response is sent. Returns the Response for chaining.
func (r *Response) Status(code int) *Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sent && !r.revoked {
		r.status = code
	}
	return r
}

// Header buffers a response header field. Setting the same name again
// replaces the previous value but keeps its original position. It has no
// effect after the response is sent. Returns the Response for chaining.
func (r *Response) Header(name, value string) *Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent || r.revoked {
		return r
	}
	for i := range r.headers {
		if r.headers[i].name == name {
			r.headers[i].value = value
			return r
		}
	}
	r.headers = append(r.headers, headerField{name: name, value: value})
	return r
}

// Sent reports whether the response has been finalized. Collaborators
// must consult this before attempting a write to avoid the
// double-response fault.
func (r *Response) Sent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

// StatusCode returns the status code the response was finalized with, or
// the buffered status while unsent (zero if none was set).
func (r *Response) StatusCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Send finalizes the response with the buffered status and headers and
// the given body. A zero status defaults to 200 OK. Returns a
// *Violation error if the response was already sent or revoked.
func (r *Response) Send(body []byte) error {
	return r.finalize(0, "", body)
}

// Text finalizes the response with the given status code and a
// text/plain body.
func (r *Response) Text(code int, body string) error {
	return r.finalize(code, "text/plain; charset=utf-8", []byte(body))
}

// JSON encodes v as JSON and finalizes the response with the given
// status code. If encoding fails, the response is left untouched and
// the error is returned so the handler can forward it via next(err).
func (r *Response) JSON(code int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	return r.finalize(code, "application/json", buf.Bytes())
}

// XML encodes v as XML and finalizes the response with the given status
// code. If encoding fails, the response is left untouched and the error
// is returned so the handler can forward it via next(err).
func (r *Response) XML(code int, v any) error {
	var buf bytes.Buffer
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	return r.finalize(code, "application/xml", buf.Bytes())
}

// End finalizes the response with the buffered status and headers and
// no body.
func (r *Response) End() error {
	return r.finalize(0, "", nil)
}

// finalize performs the single permitted wire write. code overrides the
// buffered status when non-zero; contentType is set only when the
// handler did not buffer its own.
func (r *Response) finalize(code int, contentType string, body []byte) error {
	r.mu.Lock()

	if r.sent {
		err := r.violateLocked(ViolationDoubleResponse)
		r.mu.Unlock()
		return err
	}
	if r.revoked {
		err := r.violateLocked(ViolationLateWrite)
		r.mu.Unlock()
		return err
	}

	status := r.status
	if code != 0 {
		status = code
	}
	if status == 0 {
		status = http.StatusOK
	}

	wire := r.w.Header()
	if contentType != "" && !r.hasHeader("Content-Type") {
		wire.Set("Content-Type", contentType)
	}
	for _, h := range r.headers {
		wire.Set(h.name, h.value)
	}

	r.w.WriteHeader(status)
	if len(body) > 0 {
		r.w.Write(body)
	}

	r.status = status
	r.sent = true
	sent := r.onSent
	r.mu.Unlock()

	if sent != nil {
		sent()
	}
	return nil
}

// hasHeader reports whether a header with the given name was buffered.
// Callers must hold mu.
func (r *Response) hasHeader(name string) bool {
	for _, h := range r.headers {
		if h.name == name {
			return true
		}
	}
	return false
}

// violate reports a contract violation and returns it as an error.
func (r *Response) violate(kind ViolationKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.violateLocked(kind)
}

// violateLocked is violate for callers already holding mu.
func (r *Response) violateLocked(kind ViolationKind) error {
	if r.report != nil {
		r.report(kind)
	}
	return &Violation{Kind: kind}
}

// revoke seals the response against the in-flight chain. It returns true
// if the response had not been sent, in which case the caller takes over
// the underlying writer. Any later write through this Response is
// reported as a late write and refused.
func (r *Response) revoke() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent {
		return false
	}
	r.revoked = true
	return true
}

// isRevoked reports whether the response was revoked at deadline.
func (r *Response) isRevoked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revoked
}

// writer returns the underlying http.ResponseWriter. Used by the
// dispatcher when it seizes a revoked response at deadline.
func (r *Response) writer() http.ResponseWriter {
	return r.w
}
