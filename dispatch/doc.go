// Package dispatch implements an HTTP request routing and middleware
// dispatch engine: it matches an incoming (method, path) pair to a
// handler chain, executes the chain in strict registration order with an
// explicit continuation, composes sub-routers by path-prefix mounting,
// and short-circuits failures into a separate error-handling channel.
//
// The package implements routing semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 3986 (URIs)
//
// # Handlers and the continuation
//
// A Handler receives the request context, the response context and a
// continuation:
//
//	app := dispatch.New()
//	app.Get("/users/:id", func(req *dispatch.Request, res *dispatch.Response, next dispatch.Next) {
//		res.JSON(200, map[string]string{"id": req.Param("id")})
//	})
//	http.ListenAndServe(":8080", app)
//
// A handler must do exactly one of three things: call next() to advance
// to the following handler, call next(err) to jump to the error channel,
// or write a response, which completes the dispatch. Writing twice, or
// calling next after a response, is a contract violation: it is detected,
// logged with request context and refused, but never crashes the process.
// A handler that does none of the three stalls the chain; the dispatcher
// bounds the stall with the configured request deadline instead of
// hanging forever.
//
// # Route patterns
//
// Patterns are segment based:
//
//	app.Get("/users/:id", handler)          // named parameter
//	app.Get("/files/*path", handler)        // terminal wildcard
//	app.Get("/posts/:slug?", handler)       // optional parameter
//	app.Get("/orders/:id(int)", handler)    // constrained parameter
//
// Parameter values are always strings. Constraints are macro names
// (uuid, int, float, slug, alpha, alphanum, date, hex, domain) or raw
// regular expressions that must match the whole segment.
//
// # First match wins
//
// The route table is scanned top to bottom and the scan commits to the
// first entry matching both method and path; it never backtracks to a
// better-fitting later entry. Specific routes must therefore be
// registered before general ones:
//
//	app.Get("/users/profile", profileHandler) // must come first
//	app.Get("/users/:id", userHandler)
//
// Registered in the opposite order, "/users/profile" is captured by the
// :id route with params id = "profile".
//
// # Middleware
//
// Middleware is registered with Use (every path) or UseAt (paths under a
// prefix at a segment boundary). Unlike routing, which is exclusive,
// middleware is cumulative: every matching entry runs, in registration
// order, ahead of the matched route's handlers.
//
//	app.Use(accessLog)
//	app.UseAt("/admin", requireAuth)
//
// # Mounting
//
// A Router can be mounted under a prefix of a parent. The child sees the
// path with the prefix stripped; requests the child does not match fall
// through to the parent, and the child's unhandled errors propagate into
// the parent's error channel:
//
//	users := dispatch.NewRouter()
//	users.Get("/:id", userHandler) // serves GET /users/42
//	app.Mount("/users", users)
//
// # Error channel
//
// Error handlers are registered with UseError and take the error value
// first. When a handler calls next(err), the remaining normal sequence
// is abandoned and only error handlers registered after the failure
// point run, in order. An error handler recovers by writing a response
// or re-raises with next(err2). An exhausted channel yields a generic
// 500 terminal; the error's diagnostic text appears in the body only in
// development mode, never in production.
//
// Panics inside a handler's own call frame are recovered and converted
// to next(err). Failures signaled after the handler has returned are
// not auto-captured; wrap suspending work in Async to forward them.
//
// # Lifecycle
//
// All registration is setup-time only. The first dispatch freezes the
// router and every mounted child; the frozen tables are immutable and
// safe for unsynchronized concurrent reads, and later registration
// panics. Request and Response contexts are created per request, owned
// exclusively by their in-flight dispatch and never reused.
//
// Path matching is case-sensitive. Paths are normalized before matching:
// dot segments are removed and the trailing slash is stripped, so
// "/users/" and "/users" address the same route.
package dispatch
