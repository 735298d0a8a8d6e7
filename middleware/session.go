package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/pressassist/pressauth"
)

// SessionCookie is the cookie name the guards read the bearer token from.
const SessionCookie = "session_id"

type sessionContextKey struct{}

// SessionFromContext returns the session injected by [RequireSession].
func SessionFromContext(ctx context.Context) (pressauth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(pressauth.Session)
	return s, ok
}

// RequireSession rejects requests without a live session and injects the
// resolved session into the request context. The client IP and User-Agent
// are attached to the context for downstream Manager calls.
func RequireSession(manager *pressauth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := requestContext(r)

			token, ok := sessionToken(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			s, err := manager.VerifySession(ctx, token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, sessionContextKey{}, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission wraps [RequireSession] and additionally checks that the
// session's role may perform action.
func RequirePermission(manager *pressauth.Manager, action string) func(http.Handler) http.Handler {
	requireSession := RequireSession(manager)
	return func(next http.Handler) http.Handler {
		return requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err := manager.CheckPermission(s.Role, action); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func sessionToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// requestContext attaches the client IP and User-Agent to the request
// context so rate limiting and audit records see them.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "" {
		ctx = pressauth.WithClientIP(ctx, host)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = pressauth.WithUserAgent(ctx, ua)
	}
	return ctx
}
