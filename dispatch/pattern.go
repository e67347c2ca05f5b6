package dispatch

import (
	"fmt"
	"strings"
)

// segmentKind discriminates the three segment specs a pattern is built from.
type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam
	segWildcard
)

// segment is one compiled element of a route pattern.
type segment struct {
	kind     segmentKind
	literal  string
	name     string
	optional bool
	// constraint validates the bound value for param segments.
	// Nil means any non-empty segment matches.
	constraint varMatcher
}

// Pattern is a compiled route pattern. Patterns are compiled once at
// registration and are immutable and safe for unsynchronized concurrent
// matching thereafter.
//
// Pattern syntax, segment by segment:
//
//	users        literal, matched byte-for-byte (case-sensitive)
//	:id          named parameter, matches exactly one non-empty segment
//	:id?         optional parameter, matches zero or one segment
//	:id(int)     constrained parameter (macro name or raw regexp)
//	*            wildcard, matches all remaining segments joined by "/"
//	*files       named wildcard
//
// At most one wildcard is permitted and it must be the terminal segment.
// Parameter values are always strings; no type coercion is performed.
type Pattern struct {
	template string
	segments []segment
	// required is the number of non-optional, non-wildcard segments.
	required int
	wildcard bool
}

// Compile parses a route pattern string. It returns a *PatternError if the
// pattern is malformed: empty parameter name, duplicate parameter names,
// more than one wildcard, a non-terminal wildcard, or an invalid constraint.
func Compile(pattern string) (*Pattern, error) {
	p := &Pattern{template: pattern}

	seen := make(map[string]bool)
	parts := splitPath(pattern)

	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, "*"):
			if i != len(parts)-1 {
				return nil, &PatternError{Pattern: pattern, Reason: "wildcard must be the terminal segment"}
			}
			name := part[1:]
			if name == "" {
				name = "*"
			}
			if seen[name] {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("duplicated parameter %q", name)}
			}
			seen[name] = true
			p.segments = append(p.segments, segment{kind: segWildcard, name: name})
			p.wildcard = true

		case strings.HasPrefix(part, ":"):
			name := part[1:]
			optional := strings.HasSuffix(name, "?")
			if optional {
				name = strings.TrimSuffix(name, "?")
			}

			var constraint varMatcher
			if open := strings.IndexByte(name, '('); open != -1 {
				if !strings.HasSuffix(name, ")") {
					return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("unterminated constraint in segment %q", part)}
				}
				expr := name[open+1 : len(name)-1]
				name = name[:open]

				m, err := compileConstraint(expr)
				if err != nil {
					return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("invalid constraint %q: %v", expr, err)}
				}
				constraint = m
			}

			if name == "" {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("missing parameter name in segment %q", part)}
			}
			if seen[name] {
				return nil, &PatternError{Pattern: pattern, Reason: fmt.Sprintf("duplicated parameter %q", name)}
			}
			seen[name] = true

			p.segments = append(p.segments, segment{
				kind:       segParam,
				name:       name,
				optional:   optional,
				constraint: constraint,
			})
			if !optional {
				p.required++
			}

		default:
			p.segments = append(p.segments, segment{kind: segLiteral, literal: part})
			p.required++
		}
	}

	return p, nil
}

// MustCompile is like Compile but panics on error. Intended for patterns
// known to be valid at compile time.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Template returns the original pattern string.
func (p *Pattern) Template() string {
	return p.template
}

// ParamNames returns the parameter names in declaration order, including
// the wildcard name if present.
func (p *Pattern) ParamNames() []string {
	var names []string
	for _, seg := range p.segments {
		if seg.kind != segLiteral {
			names = append(names, seg.name)
		}
	}
	return names
}

// Match reports whether path matches the pattern and returns the bound
// parameters in declaration order. Matching is segment-by-segment and
// case-sensitive. A parameter never binds an empty string; an optional
// parameter that matched zero segments is absent from the result.
func (p *Pattern) Match(path string) (*Params, bool) {
	parts := splitPath(path)
	if len(parts) < p.required {
		return nil, false
	}
	if !p.wildcard && !hasOptional(p.segments) && len(parts) != len(p.segments) {
		return nil, false
	}

	params := newParams()
	if p.matchFrom(0, parts, params) {
		return params, true
	}
	return nil, false
}

// matchFrom matches segments[si:] against the remaining path parts,
// trying the zero-segment branch of optional parameters first so that
// trailing optionals do not steal segments from later specs.
func (p *Pattern) matchFrom(si int, parts []string, params *Params) bool {
	if si == len(p.segments) {
		return len(parts) == 0
	}

	seg := p.segments[si]
	switch seg.kind {
	case segWildcard:
		// A wildcard requires at least one remaining segment; only an
		// explicit optional parameter may match nothing.
		if len(parts) == 0 {
			return false
		}
		params.set(seg.name, strings.Join(parts, "/"))
		return true

	case segParam:
		if seg.optional {
			mark := params.mark()
			if p.matchFrom(si+1, parts, params) {
				return true
			}
			params.rewind(mark)
		}
		if len(parts) == 0 || parts[0] == "" {
			return false
		}
		if seg.constraint != nil && !seg.constraint.MatchString(parts[0]) {
			return false
		}
		mark := params.mark()
		params.set(seg.name, parts[0])
		if p.matchFrom(si+1, parts[1:], params) {
			return true
		}
		params.rewind(mark)
		return false

	default:
		if len(parts) == 0 || parts[0] != seg.literal {
			return false
		}
		return p.matchFrom(si+1, parts[1:], params)
	}
}

// hasOptional reports whether any segment is an optional parameter.
func hasOptional(segs []segment) bool {
	for _, s := range segs {
		if s.kind == segParam && s.optional {
			return true
		}
	}
	return false
}

// splitPath splits a normalized path into its segments. The root path
// and the empty string produce no segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
