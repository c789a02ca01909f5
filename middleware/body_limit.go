package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// BodyLimit returns gorilla/mux middleware that caps the request body at
// maxBytes via http.MaxBytesReader. Reads past the limit fail and the
// handler can respond with 413 Request Entity Too Large.
func BodyLimit(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimitHandler overrides the body size limit for a single route.
// Useful for upload endpoints that need a higher cap than the global default.
func BodyLimitHandler(maxBytes int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		next(w, r)
	}
}
