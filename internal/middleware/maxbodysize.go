package middleware

import "net/http"

// NewMaxBodySizeHandler returns a middleware that limits incoming request body
// sizes to limit bytes. The body is wrapped with http.MaxBytesReader, so a
// handler reading past the limit gets an error and the connection is closed;
// requests that declare an oversized Content-Length up front are rejected with
// 413 before reaching the next handler.
//
// Photo uploads stream through handlers, so this is the only place the upload
// size cap is enforced.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge),
					http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
