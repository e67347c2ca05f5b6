package dispatch

import (
	"strings"
)

// middlewareEntry is one registered middleware: an optional path prefix
// and an ordered handler chain. An empty prefix matches every path.
// Mounted sub-routers are middleware entries whose single handler is the
// mount adapter; the mounted field keeps the child reachable for
// freezing and method probing.
type middlewareEntry struct {
	prefix   string
	handlers []Handler
	seq      int
	mounted  *Router
}

// errorEntry is one registered error handler chain. It has the same
// shape as a middleware entry but its handlers take the error value
// first and run only after a failure signal.
type errorEntry struct {
	prefix   string
	handlers []ErrorHandler
	seq      int
}

// middlewareStack is the ordered, append-only list of middleware
// entries. Unlike route matching, which is exclusive, middleware
// collection is cumulative: every matching entry applies, in
// registration order.
type middlewareStack struct {
	entries []*middlewareEntry
}

func (s *middlewareStack) add(e *middlewareEntry) {
	s.entries = append(s.entries, e)
}

// applicable returns every entry whose prefix is empty or is a prefix of
// path at a segment boundary, in registration order.
func (s *middlewareStack) applicable(path string) []*middlewareEntry {
	var matched []*middlewareEntry
	for _, e := range s.entries {
		if prefixMatches(e.prefix, path) {
			matched = append(matched, e)
		}
	}
	return matched
}

// prefixMatches reports whether prefix matches path at a segment
// boundary: "/users" matches "/users" and "/users/42" but not "/usersX".
// The empty prefix and "/" match every path.
func prefixMatches(prefix, path string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// stripPrefix removes prefix from path, keeping a leading slash so the
// child router sees a rooted path. stripPrefix("/users", "/users/42")
// is "/42"; stripping the whole path yields "/".
func stripPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	stripped := path[len(prefix):]
	if stripped == "" {
		return "/"
	}
	return stripped
}
