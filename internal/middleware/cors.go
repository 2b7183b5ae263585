package middleware

import (
	"net/http"
	"strings"
)

// DefaultCORSAllowedMethods covers every method the chat API serves.
var DefaultCORSAllowedMethods = []string{"GET", "POST", "PUT", "OPTIONS"}

// DefaultCORSAllowedHeaders is the default set of request headers allowed for CORS.
var DefaultCORSAllowedHeaders = []string{"Accept", "Authorization", "Content-Type"}

// corsExposedHeaders lets browser clients read the auth challenge and request id.
var corsExposedHeaders = []string{"WWW-Authenticate", "X-Request-Id"}

// CORS returns a middleware that sets CORS response headers and handles OPTIONS preflight
// for the listed origins. When origins is empty, the middleware is a no-op.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	originSet := make(map[string]bool, len(origins))
	for _, o := range origins {
		originSet[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originSet[origin] {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(DefaultCORSAllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(DefaultCORSAllowedHeaders, ", "))
				h.Set("Access-Control-Expose-Headers", strings.Join(corsExposedHeaders, ", "))
				h.Set("Access-Control-Max-Age", "86400")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
