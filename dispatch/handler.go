package dispatch

// Next is the continuation a handler uses to hand control back to the
// dispatcher. Calling next() advances to the next handler in the
// sequence; calling next(err) signals failure and jumps to the error
// channel. A handler must call next exactly once, or write a response
// exactly once, never both and never neither.
type Next func(err ...error)

// Handler is a unit of request-processing logic registered against a
// route or as middleware. It may mutate the request, write the response,
// or advance the chain via next.
type Handler func(req *Request, res *Response, next Next)

// ErrorHandler is invoked only after a handler signals failure. It
// receives the error value first and may recover by writing a response,
// or re-raise via next(err2) to the next error handler. Calling next()
// with no argument re-raises the current error.
//
// ErrorHandler is a distinct type rather than a Handler variant so that
// registration resolves the two by the type system, not by inspection.
type ErrorHandler func(err error, req *Request, res *Response, next Next)
