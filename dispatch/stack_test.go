package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixMatches(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		path   string
		want   bool
	}{
		{"empty prefix matches everything", "", "/users/42", true},
		{"root prefix matches everything", "/", "/users", true},
		{"exact prefix", "/users", "/users", true},
		{"prefix at segment boundary", "/users", "/users/42", true},
		{"prefix inside a segment", "/users", "/usersX", false},
		{"prefix longer than path", "/users/42", "/users", false},
		{"nested prefix", "/api/v1", "/api/v1/users", true},
		{"unrelated path", "/admin", "/users", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, prefixMatches(tt.prefix, tt.path))
		})
	}
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		path   string
		want   string
	}{
		{"strips prefix keeping rooted path", "/users", "/users/42", "/42"},
		{"whole path becomes root", "/users", "/users", "/"},
		{"empty prefix strips nothing", "", "/users/42", "/users/42"},
		{"root prefix strips nothing", "/", "/users", "/users"},
		{"nested remainder", "/api", "/api/v1/users", "/v1/users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripPrefix(tt.prefix, tt.path))
		})
	}
}

func TestMiddlewareStackApplicable(t *testing.T) {
	noop := func(_ *Request, _ *Response, next Next) { next() }

	t.Run("collects all matching entries in registration order", func(t *testing.T) {
		s := &middlewareStack{}
		s.add(&middlewareEntry{prefix: "", handlers: []Handler{noop}, seq: 1})
		s.add(&middlewareEntry{prefix: "/users", handlers: []Handler{noop}, seq: 2})
		s.add(&middlewareEntry{prefix: "/admin", handlers: []Handler{noop}, seq: 3})
		s.add(&middlewareEntry{prefix: "/users/42", handlers: []Handler{noop}, seq: 4})

		matched := s.applicable("/users/42")
		require.Len(t, matched, 3, "middleware is cumulative, not first-match")
		assert.Equal(t, []int{1, 2, 4}, []int{matched[0].seq, matched[1].seq, matched[2].seq})
	})

	t.Run("no matching entries", func(t *testing.T) {
		s := &middlewareStack{}
		s.add(&middlewareEntry{prefix: "/admin", handlers: []Handler{noop}, seq: 1})

		assert.Empty(t, s.applicable("/users"))
	})
}
