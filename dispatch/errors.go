package dispatch

import (
	"errors"
	"fmt"
)

// ErrNotFound names the no-matching-route outcome. A handler may signal
// it via next(ErrNotFound) to decline a request; left unhandled by the
// error channel it produces the regular 404 Not Found terminal per
// RFC 9110 Section 15.5.5 instead of a failure response.
var ErrNotFound = errors.New("relay: no matching route was found")

// ErrMethodMismatch names the path-matched-but-wrong-method outcome.
// Left unhandled it produces the 405 Method Not Allowed terminal with an
// Allow header per RFC 9110 Section 15.5.6.
var ErrMethodMismatch = errors.New("relay: method is not allowed")

// ErrDispatchTimeout is the synthetic error routed into the error channel
// when a handler neither advanced the chain nor wrote a response before
// the request deadline elapsed.
var ErrDispatchTimeout = errors.New("relay: dispatch deadline exceeded")

// PatternError reports a malformed route pattern at registration time.
// It is a startup failure, never a per-request condition.
type PatternError struct {
	Pattern string
	Reason  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("relay: invalid pattern %q: %s", e.Pattern, e.Reason)
}

// ViolationKind classifies handler contract violations.
type ViolationKind int

const (
	// ViolationDoubleResponse is a write attempt after the response was
	// already sent.
	ViolationDoubleResponse ViolationKind = iota

	// ViolationNextAfterResponse is a call to next after the response was
	// already sent.
	ViolationNextAfterResponse

	// ViolationDoubleNext is a second call to next from the same handler
	// invocation.
	ViolationDoubleNext

	// ViolationLateWrite is a write or continuation attempt after the
	// dispatcher revoked the response, typically because the request
	// deadline elapsed. The attempt is refused: a condemned chain can
	// neither reach the client nor advance further.
	ViolationLateWrite
)

// String returns a short name for the violation kind.
func (k ViolationKind) String() string {
	switch k {
	case ViolationDoubleResponse:
		return "double response"
	case ViolationNextAfterResponse:
		return "next after response"
	case ViolationDoubleNext:
		return "double next"
	case ViolationLateWrite:
		return "late write"
	default:
		return "unknown violation"
	}
}

// Violation reports a handler programming error detected during dispatch.
// Violations are reported loudly and isolated to the offending request;
// they never crash the serving process and never produce a second write.
type Violation struct {
	Kind   ViolationKind
	Method string
	Path   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("relay: contract violation (%s) during %s %s", v.Kind, v.Method, v.Path)
}
