package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/daap14/nextup/internal/api/response"
)

// Recovery is middleware that turns a panic into a 500 envelope and logs the
// stack with the request ID.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				Logger(r.Context()).Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", GetRequestID(r.Context()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
