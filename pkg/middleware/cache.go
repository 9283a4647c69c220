package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks GET and HEAD responses as publicly cacheable for maxAge
// seconds. Other methods get no-store.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	public := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead:
				w.Header().Set("Cache-Control", public)
			default:
				w.Header().Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
