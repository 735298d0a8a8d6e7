package middleware

import (
	"net/http"

	"github.com/pressassist/pressauth"
)

// CSRFHeader carries the token issued at login.
const CSRFHeader = "X-CSRF-Token"

// RequireCSRF verifies the CSRF header against the context session on
// mutating requests. Safe methods pass through untouched. It must run
// after [RequireSession].
func RequireCSRF(manager *pressauth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			s, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err := manager.VerifyCSRF(s, r.Header.Get(CSRFHeader)); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
