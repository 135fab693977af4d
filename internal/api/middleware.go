// Package api implements the tebiki REST API using chi.
package api

import (
	"fmt"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit returns per-client-IP rate limiting middleware. rate uses the
// limiter's formatted syntax, e.g. "5-M" for five requests per minute.
func RateLimit(rate string) (func(http.Handler) http.Handler, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("api: parse rate %q: %w", rate, err)
	}
	instance := limiter.New(memory.NewStore(), r, limiter.WithTrustForwardHeader(true))
	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody("too many requests"))
		}),
	)
	return mw.Handler, nil
}
