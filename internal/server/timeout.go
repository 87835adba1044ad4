package server

import (
	"context"
	"net/http"
	"time"
)

// DefaultTimeout bounds each inspect request, mostly history queries.
const DefaultTimeout = 10 * time.Second

// TimeoutMiddleware cancels the request context after timeout. Handlers
// stop cooperatively by checking the context.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
