// Package requesttime pins "now" for the duration of a request so every
// timestamp a request produces agrees.
package requesttime

import (
	"net/http"
	"time"

	"crmdir/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context. Read it back with requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
