package dispatch

import (
	"fmt"
	"regexp"
	"sync"
)

// varMatcher validates a single route parameter value.
// *regexp.Regexp satisfies this interface.
type varMatcher interface {
	MatchString(string) bool
	String() string
}

// lengthMatcher wraps a regexp with an additional maximum length constraint.
type lengthMatcher struct {
	re     *regexp.Regexp
	maxLen int
}

func (m *lengthMatcher) MatchString(s string) bool {
	return len(s) <= m.maxLen && m.re.MatchString(s)
}

func (m *lengthMatcher) String() string {
	return m.re.String()
}

// constraintMacros maps macro names to pre-compiled matchers.
// Used in parameter constraints: :name(macro).
var constraintMacros = func() map[string]varMatcher {
	raw := map[string]string{
		"uuid":     `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
		"int":      `[0-9]+`,
		"float":    `[0-9]*\.?[0-9]+`,
		"slug":     `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`,
		"alpha":    `[a-zA-Z]+`,
		"alphanum": `[a-zA-Z0-9]+`,
		"date":     `[0-9]{4}-[0-9]{2}-[0-9]{2}`,
		"hex":      `[0-9a-fA-F]+`,
		// RFC 1035/1123: labels 1-63 chars, total up to 253 chars.
		"domain": `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`,
	}

	// Macros that require length validation beyond the regexp.
	maxLengths := map[string]int{
		"domain": 253,
	}

	m := make(map[string]varMatcher, len(raw))
	for name, pattern := range raw {
		re := regexp.MustCompile(fmt.Sprintf("^%s$", pattern))
		if maxLen, ok := maxLengths[name]; ok {
			m[name] = &lengthMatcher{re: re, maxLen: maxLen}
		} else {
			m[name] = re
		}
	}

	return m
}()

// constraintCache caches compiled constraint regexps by expression string.
// The number of unique expressions is bounded by the number of registered
// routes, so the cache grows to a fixed size and stays there.
var constraintCache sync.Map

// compileConstraint returns a matcher for a parameter constraint
// expression: a known macro name, or otherwise a regular expression that
// must match the whole segment value.
func compileConstraint(expr string) (varMatcher, error) {
	if m, ok := constraintMacros[expr]; ok {
		return m, nil
	}

	if v, ok := constraintCache.Load(expr); ok {
		return v.(varMatcher), nil
	}

	re, err := regexp.Compile(fmt.Sprintf("^(?:%s)$", expr))
	if err != nil {
		return nil, err
	}

	actual, _ := constraintCache.LoadOrStore(expr, varMatcher(re))

	return actual.(varMatcher), nil
}
