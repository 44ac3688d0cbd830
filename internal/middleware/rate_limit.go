package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitMiddleware allows each client IP at most requests per window across all routes
//
// With trustProxy the client IP is taken from True-Client-IP, X-Real-IP or
// X-Forwarded-For, otherwise from the connection's remote address.
func RateLimitMiddleware(requests int, window time.Duration, trustProxy bool) func(http.Handler) http.Handler {
	keyFunc := httprate.KeyByIP
	if trustProxy {
		keyFunc = httprate.KeyByRealIP
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSONMessage(w, http.StatusTooManyRequests, "too many requests, please try again later")
		}),
	)
}
