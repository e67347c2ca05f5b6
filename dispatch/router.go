package dispatch

import (
	"fmt"
	"net/http"
	"sort"
	"sync/atomic"
)

// Router owns one route table, one middleware stack and one error
// channel. Routers compose by mounting: a child router installed under a
// path prefix of a parent. All registration is setup-time only; the
// first dispatch freezes the router and every mounted descendant, after
// which the tables are read-only and safe for unsynchronized concurrent
// reads. Registering after the freeze panics.
type Router struct {
	table  routeTable
	stack  middlewareStack
	errors []*errorEntry

	// seq is the shared registration counter across routes, middleware
	// and error entries. The error channel cursor compares against it.
	seq int

	frozen atomic.Bool
}

// NewRouter returns a new, empty router.
func NewRouter() *Router {
	return &Router{}
}

// Route registers a handler chain for the given method and pattern.
// Registration order is semantically significant: dispatch commits to
// the first matching route and never reconsiders, so specific patterns
// must be registered before general ones.
//
// Route panics on a malformed pattern or an empty or nil handler chain;
// both are setup-time programming errors that must fail application
// boot, not per-request conditions.
func (r *Router) Route(method, pattern string, handlers ...Handler) {
	r.checkRegistration(handlers)

	compiled, err := Compile(pattern)
	if err != nil {
		panic(err)
	}

	r.table.add(&RouteEntry{
		method:   normalizeMethod(method),
		pattern:  compiled,
		handlers: handlers,
		seq:      r.nextSeq(),
	})
}

// Get registers a GET route.
func (r *Router) Get(pattern string, handlers ...Handler) {
	r.Route(http.MethodGet, pattern, handlers...)
}

// Post registers a POST route.
func (r *Router) Post(pattern string, handlers ...Handler) {
	r.Route(http.MethodPost, pattern, handlers...)
}

// Put registers a PUT route.
func (r *Router) Put(pattern string, handlers ...Handler) {
	r.Route(http.MethodPut, pattern, handlers...)
}

// Patch registers a PATCH route.
func (r *Router) Patch(pattern string, handlers ...Handler) {
	r.Route(http.MethodPatch, pattern, handlers...)
}

// Delete registers a DELETE route.
func (r *Router) Delete(pattern string, handlers ...Handler) {
	r.Route(http.MethodDelete, pattern, handlers...)
}

// Options registers an OPTIONS route.
func (r *Router) Options(pattern string, handlers ...Handler) {
	r.Route(http.MethodOptions, pattern, handlers...)
}

// Head registers a HEAD route. Methods match exactly: GET routes do not
// implicitly serve HEAD requests.
func (r *Router) Head(pattern string, handlers ...Handler) {
	r.Route(http.MethodHead, pattern, handlers...)
}

// Use registers middleware applying to every path. Middleware is
// cumulative: all matching entries run, in registration order, before
// the matched route's handlers.
func (r *Router) Use(handlers ...Handler) {
	r.UseAt("", handlers...)
}

// UseAt registers middleware applying to paths under the given prefix at
// a segment boundary: "/users" applies to "/users" and "/users/42" but
// not "/usersX". An empty prefix applies to every path.
func (r *Router) UseAt(prefix string, handlers ...Handler) {
	r.checkRegistration(handlers)

	r.stack.add(&middlewareEntry{
		prefix:   normalizePath(prefix),
		handlers: handlers,
		seq:      r.nextSeq(),
	})
}

// UseError registers error handlers on the error channel. They run only
// after a failure signal, in registration order, and only those
// registered after the point of failure are considered.
func (r *Router) UseError(handlers ...ErrorHandler) {
	r.UseErrorAt("", handlers...)
}

// UseErrorAt registers error handlers applying only to paths under the
// given prefix, with the same boundary rule as UseAt.
func (r *Router) UseErrorAt(prefix string, handlers ...ErrorHandler) {
	if r.frozen.Load() {
		panic("relay: registration after serving began")
	}
	if len(handlers) == 0 {
		panic("relay: no handlers passed to UseError")
	}
	for _, h := range handlers {
		if h == nil {
			panic("relay: nil handler passed to UseError")
		}
	}

	r.errors = append(r.errors, &errorEntry{
		prefix:   normalizePath(prefix),
		handlers: handlers,
		seq:      r.nextSeq(),
	})
}

// Mount installs child under the given path prefix. The child's routes
// and middleware see the path with the prefix stripped; the original
// path is restored when control returns to the parent. A child that
// matches nothing falls through to the parent via the normal next
// contract, and a child's unhandled error propagates into the parent's
// error channel. Mounting composes transitively. An empty prefix mounts
// the child's routes unprefixed.
//
// The parent holds the only reference to the child; sharing a child
// between parents or registering on it after mounting begins serving is
// not supported.
func (r *Router) Mount(prefix string, child *Router) {
	if r.frozen.Load() {
		panic("relay: registration after serving began")
	}
	if child == nil {
		panic("relay: nil router passed to Mount")
	}

	mountPrefix := normalizePath(prefix)
	adapter := func(req *Request, res *Response, next Next) {
		saved := req.Path
		savedParams := req.Params
		parent := req.owner
		req.Path = stripPrefix(mountPrefix, saved)

		child.dispatch(req, res, func(err error) {
			req.Path = saved
			req.owner = parent
			if err != nil {
				next(err)
				return
			}
			if res.Sent() {
				// Child completed; propagate resolution to the parent
				// chain instead of advancing it.
				parent.resolve(nil)
				return
			}
			req.Params = savedParams
			next()
		})
	}

	r.stack.add(&middlewareEntry{
		prefix:   mountPrefix,
		handlers: []Handler{adapter},
		seq:      r.nextSeq(),
		mounted:  child,
	})
}

// freeze marks the router and every mounted descendant read-only.
// Serving must not begin before registration is complete; freeze is the
// boundary between the two phases.
func (r *Router) freeze() {
	if !r.frozen.CompareAndSwap(false, true) {
		return
	}
	for _, e := range r.stack.entries {
		if e.mounted != nil {
			e.mounted.freeze()
		}
	}
}

// allowedMethods returns the sorted set of methods for which a route
// matches the given path, probing mounted children transitively. Used to
// populate the Allow header on 405 responses per RFC 9110 Section 10.2.1.
func (r *Router) allowedMethods(path string) []string {
	methods := r.table.methodsFor(path)

	for _, e := range r.stack.entries {
		if e.mounted == nil || !prefixMatches(e.prefix, path) {
			continue
		}
		for _, m := range e.mounted.allowedMethods(stripPrefix(e.prefix, path)) {
			if !containsString(methods, m) {
				methods = append(methods, m)
			}
		}
	}

	sort.Strings(methods)
	return methods
}

// checkRegistration panics on registration-phase misuse shared by Route,
// Use and UseAt.
func (r *Router) checkRegistration(handlers []Handler) {
	if r.frozen.Load() {
		panic("relay: registration after serving began")
	}
	if len(handlers) == 0 {
		panic("relay: no handlers passed to registration")
	}
	for _, h := range handlers {
		if h == nil {
			panic("relay: nil handler passed to registration")
		}
	}
}

// nextSeq returns the next registration sequence number.
func (r *Router) nextSeq() int {
	r.seq++
	return r.seq
}

// String describes the router for debugging.
func (r *Router) String() string {
	return fmt.Sprintf("relay.Router(routes=%d, middleware=%d, errors=%d)",
		len(r.table.entries), len(r.stack.entries), len(r.errors))
}
