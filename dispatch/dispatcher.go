package dispatch

import (
	"fmt"
)

// dispatchState tracks the lifecycle of a single dispatch.
type dispatchState int

const (
	statePending dispatchState = iota
	stateRunning
	stateCompleted
	stateFailed
)

// step is one handler invocation slot in the built execution sequence,
// tagged with the registration sequence number of its entry so the error
// channel cursor can skip handlers registered before the failure point.
type step struct {
	handler Handler
	seq     int
}

// errStep is one error handler slot from the error channel.
type errStep struct {
	handler ErrorHandler
	seq     int
}

// sequencer executes one built handler sequence for one request via
// continuation passing. It has no goroutine affinity: a handler may
// suspend and resume the chain from another goroutine by calling next
// there. The sequencer holds no locks across handler invocations.
type sequencer struct {
	req   *Request
	res   *Response
	steps []step
	errs  []errStep

	state dispatchState

	// final resolves the dispatch: called once with nil on fall-through
	// (sequence exhausted without a response), with nil when a response
	// completed the chain, or with the unhandled error when the error
	// channel is exhausted.
	final func(error)
}

// dispatch builds and runs the execution sequence for req against this
// router: all applicable middleware in registration order, then the
// first matched route's handler chain. final resolves the outcome; see
// sequencer.final.
func (r *Router) dispatch(req *Request, res *Response, final func(error)) {
	s := &sequencer{
		req:   req,
		res:   res,
		errs:  r.errorSteps(req.Path),
		final: final,
	}

	for _, e := range r.stack.applicable(req.Path) {
		for _, h := range e.handlers {
			s.steps = append(s.steps, step{handler: h, seq: e.seq})
		}
	}

	if entry, params, _ := r.table.findFirst(req.Method, req.Path); entry != nil {
		routeParams := params
		bind := func(rq *Request, _ *Response, next Next) {
			rq.Params = routeParams
			next()
		}
		s.steps = append(s.steps, step{handler: bind, seq: entry.seq})
		for _, h := range entry.handlers {
			s.steps = append(s.steps, step{handler: h, seq: entry.seq})
		}
	}

	req.owner = s
	s.state = stateRunning
	s.proceed(0)
}

// dispatchError runs only the error channel, from the start, with the
// given error. Used by the deadline watchdog to route a liveness timeout
// through the application's error handlers.
func (r *Router) dispatchError(req *Request, res *Response, err error, final func(error)) {
	s := &sequencer{
		req:   req,
		res:   res,
		errs:  r.errorSteps(req.Path),
		final: final,
		state: stateRunning,
	}
	req.owner = s
	s.fail(-1, err)
}

// errorSteps flattens the error channel entries applicable to path, in
// registration order.
func (r *Router) errorSteps(path string) []errStep {
	var steps []errStep
	for _, e := range r.errors {
		if !prefixMatches(e.prefix, path) {
			continue
		}
		for _, h := range e.handlers {
			steps = append(steps, errStep{handler: h, seq: e.seq})
		}
	}
	return steps
}

// proceed advances the normal sequence to step i. An exhausted sequence
// without a response is a fall-through, resolved by final(nil); the
// caller synthesizes the not-found or method-not-allowed terminal.
func (s *sequencer) proceed(i int) {
	if i >= len(s.steps) {
		if !s.res.Sent() {
			s.resolve(nil)
		}
		return
	}
	s.invoke(i)
}

// invoke runs normal step i with a fresh continuation. The continuation
// enforces the handler contract: next exactly once, never after a
// response. A handler that writes a response and returns without calling
// next completes the dispatch; one that does neither leaves the chain
// suspended until next is called elsewhere or the deadline watchdog
// intervenes.
func (s *sequencer) invoke(i int) {
	called := false

	next := Next(func(errs ...error) {
		if s.res.isRevoked() {
			// The deadline watchdog condemned this request; the chain
			// must not advance and must never touch the shared request
			// state again, because the timeout error channel now runs
			// independently.
			s.res.violate(ViolationLateWrite)
			return
		}
		if s.res.Sent() {
			s.res.violate(ViolationNextAfterResponse)
			return
		}
		if called {
			s.res.violate(ViolationDoubleNext)
			return
		}
		called = true

		if err := firstError(errs); err != nil {
			s.fail(s.steps[i].seq, err)
			return
		}
		s.proceed(i + 1)
	})

	defer func() {
		if v := recover(); v != nil {
			// A panic in the handler's own call frame is auto-captured
			// and converted to next(err). Panics raised after the chain
			// already resolved are logged by the caller via the response
			// violation path but cannot redirect a settled dispatch.
			err := panicError(v)
			if !called && !s.res.Sent() && !s.res.isRevoked() {
				called = true
				s.fail(s.steps[i].seq, err)
			}
		}
	}()

	s.steps[i].handler(s.req, s.res, next)
}

// fail transitions the dispatch to Failed and walks the error channel,
// starting at the first error entry registered after the failure point.
// All remaining normal steps are abandoned.
func (s *sequencer) fail(fromSeq int, err error) {
	s.state = stateFailed

	start := len(s.errs)
	for idx, e := range s.errs {
		if e.seq > fromSeq {
			start = idx
			break
		}
	}
	s.advanceError(start, err)
}

// advanceError runs error step i with the current error. An error
// handler recovers by writing a response, or re-raises via next(err2);
// next() with no argument re-raises the current error. An exhausted
// channel resolves with the unhandled error.
func (s *sequencer) advanceError(i int, err error) {
	if i >= len(s.errs) {
		s.resolve(err)
		return
	}

	called := false

	next := Next(func(errs ...error) {
		if s.res.isRevoked() {
			s.res.violate(ViolationLateWrite)
			return
		}
		if s.res.Sent() {
			s.res.violate(ViolationNextAfterResponse)
			return
		}
		if called {
			s.res.violate(ViolationDoubleNext)
			return
		}
		called = true

		if raised := firstError(errs); raised != nil {
			s.advanceError(i+1, raised)
			return
		}
		s.advanceError(i+1, err)
	})

	defer func() {
		if v := recover(); v != nil {
			if !called && !s.res.Sent() && !s.res.isRevoked() {
				called = true
				s.advanceError(i+1, panicError(v))
			}
		}
	}()

	s.errs[i].handler(err, s.req, s.res, next)
}

// resolve settles the dispatch exactly once.
func (s *sequencer) resolve(err error) {
	if err != nil {
		s.state = stateFailed
	} else {
		s.state = stateCompleted
	}
	if s.final != nil {
		final := s.final
		s.final = nil
		final(err)
	}
}

// firstError extracts the error from a variadic next call.
func firstError(errs []error) error {
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// panicError normalizes a recovered panic value into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("relay: recovered panic: %w", err)
	}
	return fmt.Errorf("relay: recovered panic: %v", v)
}
