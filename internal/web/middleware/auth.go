package middleware

import (
	"net/http"
	"strings"
)

// Authentication requires a bearer token on API requests. The token is
// compared against the configured value; requests may also present it
// in the X-API-Key header for clients that cannot set Authorization.
func Authentication(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if got == "" {
				auth := r.Header.Get("Authorization")
				got = strings.TrimPrefix(auth, "Bearer ")
			}

			if got != token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
