package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// CORSConfig holds the allowed origins, methods, and headers for CORS.
type CORSConfig struct {
	// AllowedOrigins is the set of origins permitted to make cross-origin
	// requests. Use ["*"] to allow any origin.
	AllowedOrigins []string

	// AllowedMethods lists the HTTP methods the client may use.
	AllowedMethods []string

	// AllowedHeaders lists the request headers the client may send.
	AllowedHeaders []string

	// AllowCredentials indicates whether the browser should include
	// credentials (cookies, Authorization header) in cross-origin requests.
	AllowCredentials bool

	// MaxAge is the value of Access-Control-Max-Age in seconds.
	MaxAge string
}

// DefaultCORSConfig returns a sensible production default.
// AllowedOrigins is intentionally empty; callers must set it.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           "86400", // 24 hours
	}
}

// CORS returns gorilla/mux middleware that sets CORS headers and answers
// preflight OPTIONS requests.
//
// If AllowedOrigins contains "*", every origin is reflected back and
// Allow-Credentials is never set (browsers refuse credentials with a
// wildcard origin). Otherwise only allow-listed origins are reflected.
func CORS(cfg CORSConfig) mux.MiddlewareFunc {
	allowAll := false
	originSet := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		originSet[strings.TrimRight(o, "/")] = true
	}

	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Same-origin requests and non-browser clients omit Origin.
			if origin != "" {
				normalised := strings.TrimRight(origin, "/")

				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", origin)
				} else if originSet[normalised] {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					if cfg.AllowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
				} else {
					// Origin not allowed: skip CORS headers entirely and let
					// the browser block the response.
					if r.Method == http.MethodOptions {
						w.WriteHeader(http.StatusForbidden)
						return
					}
					next.ServeHTTP(w, r)
					return
				}

				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if cfg.MaxAge != "" {
					w.Header().Set("Access-Control-Max-Age", cfg.MaxAge)
				}
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
