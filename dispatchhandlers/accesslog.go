package dispatchhandlers

import (
	"log"
	"time"

	"github.com/vitalvas/relay/dispatch"
)

// AccessLogConfig configures the access log middleware behaviour.
type AccessLogConfig struct {
	// LogFunc receives one formatted line per completed request. When
	// nil, the standard log package is used.
	LogFunc func(format string, args ...any)

	// SkipPaths lists exact normalized paths that are not logged, such
	// as health check endpoints polled by load balancers.
	SkipPaths []string
}

// AccessLog returns a middleware handler that logs method, path, status
// and elapsed time for each request once the chain downstream of it has
// run. Requests that complete on another goroutine after the chain
// returned are logged with the status observed at that point.
func AccessLog(cfg AccessLogConfig) dispatch.Handler {
	logf := cfg.LogFunc
	if logf == nil {
		logf = log.Printf
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(req *dispatch.Request, res *dispatch.Response, next dispatch.Next) {
		if _, ok := skip[req.Path]; ok {
			next()
			return
		}

		start := time.Now()
		next()
		logf("%s %s %d %s", req.Method, req.RawPath, res.StatusCode(), time.Since(start))
	}
}
