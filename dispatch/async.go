package dispatch

// Async adapts a suspending function into a Handler that runs it on its
// own goroutine and forwards its outcome through the continuation.
//
// The dispatcher auto-captures only panics raised inside a handler's own
// call frame; a failure signaled after the handler has returned (in a
// spawned goroutine, after I/O, after awaiting a collaborator) is never
// auto-captured and would otherwise stall the request until the deadline.
// Async closes that gap: fn's returned error and any panic inside fn are
// forwarded as next(err), a nil return with a sent response completes
// the chain, and a nil return without one advances it.
//
//	app.Get("/report", dispatch.Async(func(req *dispatch.Request, res *dispatch.Response) error {
//		data, err := store.Fetch(req.Context(), req.Param("id"))
//		if err != nil {
//			return err
//		}
//		return res.JSON(200, data)
//	}))
func Async(fn func(req *Request, res *Response) error) Handler {
	return func(req *Request, res *Response, next Next) {
		go func() {
			var err error

			defer func() {
				if v := recover(); v != nil {
					next(panicError(v))
					return
				}
				if err != nil {
					next(err)
					return
				}
				if !res.Sent() {
					next()
				}
			}()

			err = fn(req, res)
		}()
	}
}
