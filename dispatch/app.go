package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
)

// App is the serving entry point: a top-level Router plus the runtime
// configuration the dispatcher consults. It implements http.Handler:
//
//	app := dispatch.New()
//	app.Get("/users/:id", handler)
//	http.ListenAndServe(":8080", app)
//
// Each inbound request is dispatched independently on its own goroutine
// with a deadline attached; concurrent dispatches share only the frozen
// registration tables.
type App struct {
	*Router

	cfg Config

	// LogFunc receives the engine's internal log lines: unhandled
	// errors, contract violations and liveness timeouts. When nil, the
	// standard log package is used. Internal logging is mandatory and
	// cannot be disabled, only redirected.
	LogFunc func(format string, args ...any)

	// OnViolation is an optional callback invoked with every detected
	// contract violation, after it has been logged.
	OnViolation func(*Violation)

	once sync.Once
}

// New returns an App with the default configuration.
func New() *App {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig returns an App using the given configuration.
func NewWithConfig(cfg Config) *App {
	cfg.applyDefaults()
	return &App{
		Router: NewRouter(),
		cfg:    cfg,
	}
}

// Config returns the application's runtime configuration.
func (a *App) Config() Config {
	return a.cfg
}

// ServeHTTP dispatches one request. The first call freezes registration;
// the tables are read-only from then on.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.freeze)

	path := normalizePath(r.URL.Path)

	ctx, cancel := context.WithTimeout(r.Context(), a.cfg.RequestTimeout)
	defer cancel()

	req := newRequest(r, ctx, path)
	res := newResponse(w)
	res.report = func(kind ViolationKind) {
		a.reportViolation(&Violation{Kind: kind, Method: req.Method, Path: req.RawPath})
	}
	res.onSent = func() {
		if owner := req.owner; owner != nil {
			owner.resolve(nil)
		}
	}

	done := make(chan struct{})
	settle := func(err error) {
		a.finish(req, res, err)
		close(done)
	}

	go a.Router.dispatch(req, res, settle)

	select {
	case <-done:
	case <-ctx.Done():
		// The chain neither advanced nor terminated before the deadline.
		// Revoke the response so the stalled handler's eventual write can
		// never reach the client, then route a synthetic timeout error
		// through the error channel.
		if !res.revoke() {
			// Response already sent; the chain is merely slow to settle.
			<-done
			return
		}
		a.logf("relay: %s %s: %v", req.Method, req.RawPath, ErrDispatchTimeout)
		a.handleTimeout(req, res.writer())
	}
}

// handleTimeout runs the error channel with the synthetic timeout error
// against a fresh response bound to the same underlying writer and a
// detached view of the request. The abandoned chain keeps exclusive
// ownership of the original request; it is halted at its next
// continuation checkpoint by the revoked response. If the channel does
// not produce a response, a timeout-class terminal is synthesized.
func (a *App) handleTimeout(req *Request, w http.ResponseWriter) {
	view := req.detached()

	res := newResponse(w)
	res.report = func(kind ViolationKind) {
		a.reportViolation(&Violation{Kind: kind, Method: view.Method, Path: view.RawPath})
	}

	done := make(chan struct{})
	res.onSent = func() {
		if owner := view.owner; owner != nil {
			owner.resolve(nil)
		}
	}

	a.Router.dispatchError(view, res, ErrDispatchTimeout, func(err error) {
		if err != nil && !res.Sent() {
			res.Text(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
		}
		close(done)
	})
	<-done
}

// finish resolves the terminal outcome of a dispatch: nothing when a
// handler already responded, a default not-found or method-not-allowed
// terminal on fall-through, or the generic failure terminal when the
// error channel was exhausted.
func (a *App) finish(req *Request, res *Response, err error) {
	if err != nil && (errors.Is(err, ErrNotFound) || errors.Is(err, ErrMethodMismatch)) {
		// A handler declined the request; treat it as a fall-through so
		// the regular not-found or method-not-allowed terminal applies.
		err = nil
	}

	if err != nil {
		a.logf("relay: %s %s: unhandled error: %v", req.Method, req.RawPath, err)
		if res.Sent() || res.isRevoked() {
			return
		}

		body := http.StatusText(http.StatusInternalServerError)
		if a.cfg.Mode == ModeDevelopment {
			body = fmt.Sprintf("%s\n\n%v", body, err)
		}
		res.Text(http.StatusInternalServerError, body)
		return
	}

	if res.Sent() || res.isRevoked() {
		return
	}

	allowed := a.Router.allowedMethods(req.RawPath)
	if len(allowed) > 0 && !containsString(allowed, req.Method) {
		// RFC 9110 Section 15.5.6: a 405 response must carry an Allow
		// header listing the supported methods.
		res.Header("Allow", strings.Join(allowed, ", "))
		res.Text(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}

	res.Text(http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// reportViolation logs a contract violation loudly and invokes the
// OnViolation callback. Violations are isolated to the offending
// request; they never crash the serving process.
func (a *App) reportViolation(v *Violation) {
	a.logf("%v", v)
	if a.OnViolation != nil {
		a.OnViolation(v)
	}
}

func (a *App) logf(format string, args ...any) {
	if a.LogFunc != nil {
		a.LogFunc(format, args...)
		return
	}
	log.Printf(format, args...)
}
