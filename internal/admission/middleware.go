package admission

import "net/http"

// DeniedBody is the fixed response served to blocked callers. It carries no
// detail about why the address was blocked.
const DeniedBody = "Access denied: IP address is blocked"

// Middleware wraps an http.Handler with the admission gate. Denied requests
// receive a 403 and never reach the next handler.
func Middleware(gate *Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := gate.Admit(r.Context(), r.RemoteAddr, r.Header.Get("X-Forwarded-For"), r.URL.Path)
			if !decision.Allowed {
				http.Error(w, DeniedBody, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
