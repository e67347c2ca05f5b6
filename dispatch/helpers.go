package dispatch

import (
	"path"
	"strings"
)

// normalizePath returns the canonical form of a request path or prefix:
// dot segments are removed per RFC 3986 Section 5.2.4 and the trailing
// slash is stripped, so "/users/" and "/users" address the same route.
// The root path is unchanged and the empty string stays empty (an empty
// middleware prefix means "every path").
func normalizePath(p string) string {
	if p == "" {
		return ""
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if np != "/" {
		np = strings.TrimSuffix(np, "/")
	}
	return np
}
