package dispatch

import (
	"strings"
)

// RouteEntry is one registered route: a method, a compiled pattern and
// an ordered handler chain. Entries are created at registration, owned
// exclusively by their route table and never mutated afterwards.
type RouteEntry struct {
	method   string
	pattern  *Pattern
	handlers []Handler
	// seq is the entry's position in the router's shared registration
	// sequence, used by the error channel cursor.
	seq int
}

// Method returns the entry's HTTP method.
func (e *RouteEntry) Method() string {
	return e.method
}

// Pattern returns the entry's compiled pattern.
func (e *RouteEntry) Pattern() *Pattern {
	return e.pattern
}

// routeTable is the ordered, append-only list of registered routes.
// It is scanned top to bottom at request time; the scan commits to the
// first match and never backtracks to a later, better-fitting entry.
// Registering specific routes before general ones is therefore part of
// the application's contract, not an optimization.
type routeTable struct {
	entries []*RouteEntry
}

// add appends an entry. Registration order is preserved forever.
func (t *routeTable) add(e *RouteEntry) {
	t.entries = append(t.entries, e)
}

// findFirst performs the linear top-to-bottom scan. It returns the first
// entry whose method equals the request method and whose pattern matches
// the path. pathMatched reports whether any entry matched the path
// regardless of method, which drives the 404 versus 405 distinction.
func (t *routeTable) findFirst(method, path string) (entry *RouteEntry, params *Params, pathMatched bool) {
	for _, e := range t.entries {
		p, ok := e.pattern.Match(path)
		if !ok {
			continue
		}
		pathMatched = true
		if e.method == method {
			return e, p, true
		}
	}
	return nil, nil, pathMatched
}

// methodsFor collects the methods of every entry whose pattern matches
// the path, in registration order without duplicates.
func (t *routeTable) methodsFor(path string) []string {
	var methods []string
	for _, e := range t.entries {
		if _, ok := e.pattern.Match(path); !ok {
			continue
		}
		if !containsString(methods, e.method) {
			methods = append(methods, e.method)
		}
	}
	return methods
}

// containsString reports whether s is present in values.
func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// normalizeMethod uppercases the method token.
func normalizeMethod(method string) string {
	return strings.ToUpper(method)
}
