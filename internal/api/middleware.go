// Package api implements the bandhub REST API using chi.
package api

import (
	"net/http"
)

// LimitBody returns middleware that caps request bodies at n bytes.
// Reads past the limit fail and the handler answers 400.
func LimitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
