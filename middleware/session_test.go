package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressassist/pressauth"
	"github.com/pressassist/pressauth/password"
	"github.com/pressassist/pressauth/permission"
)

type staticCredentials struct {
	users map[string]pressauth.Credential
}

func (s *staticCredentials) Lookup(_ context.Context, username string) (pressauth.Credential, error) {
	c, ok := s.users[username]
	if !ok {
		return pressauth.Credential{}, pressauth.ErrUserNotFound
	}
	return c, nil
}

func newTestManager(t *testing.T) *pressauth.Manager {
	t.Helper()

	cfg := pressauth.DefaultConfig()
	cfg.Password.Cost = 4
	cfg.Audit.Enabled = false

	hasher, err := password.NewBcrypt(password.Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt: %v", err)
	}
	hash, err := hasher.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	creds := &staticCredentials{users: map[string]pressauth.Credential{
		"alice": {UserID: "alice", Username: "alice", PasswordHash: hash, Role: "editor"},
	}}

	m, err := pressauth.New().
		WithConfig(cfg).
		WithCredentials(creds).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func login(t *testing.T, m *pressauth.Manager) *pressauth.LoginResult {
	t.Helper()
	ctx := pressauth.WithClientIP(context.Background(), "203.0.113.7")
	res, err := m.Login(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return res
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSessionInjectsSession(t *testing.T) {
	m := newTestManager(t)
	res := login(t, m)

	var got pressauth.Session
	handler := RequireSession(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatal("session missing from context")
		}
		got = s
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: res.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.UserID != "alice" || got.Role != "editor" {
		t.Fatalf("session = %+v", got)
	}
}

func TestRequireSessionRejectsMissingCookie(t *testing.T) {
	m := newTestManager(t)

	hit := false
	handler := RequireSession(m)(okHandler(&hit))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if hit {
		t.Fatal("handler ran without a session")
	}
}

func TestRequireSessionRejectsBadToken(t *testing.T) {
	m := newTestManager(t)

	hit := false
	handler := RequireSession(m)(okHandler(&hit))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-session"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if hit {
		t.Fatal("handler ran with an invalid token")
	}
}

func TestRequirePermission(t *testing.T) {
	m := newTestManager(t)
	res := login(t, m)

	cases := []struct {
		name   string
		action string
		want   int
	}{
		{"allowed", permission.ActionEditPage, http.StatusOK},
		{"denied", permission.ActionManageUsers, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hit := false
			handler := RequirePermission(m, tc.action)(okHandler(&hit))

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: res.Token})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if hit != (tc.want == http.StatusOK) {
				t.Fatalf("handler hit = %v", hit)
			}
		})
	}
}

func TestRequireCSRF(t *testing.T) {
	m := newTestManager(t)
	res := login(t, m)

	hit := false
	handler := RequireSession(m)(RequireCSRF(m)(okHandler(&hit)))

	send := func(method, csrf string) int {
		hit = false
		req := httptest.NewRequest(method, "/admin/pages", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: res.Token})
		if csrf != "" {
			req.Header.Set(CSRFHeader, csrf)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodPost, res.CSRFToken); code != http.StatusOK || !hit {
		t.Fatalf("valid token: status = %d, hit = %v", code, hit)
	}
	if code := send(http.MethodPost, "forged"); code != http.StatusForbidden || hit {
		t.Fatalf("forged token: status = %d, hit = %v", code, hit)
	}
	if code := send(http.MethodPost, ""); code != http.StatusForbidden || hit {
		t.Fatalf("missing token: status = %d, hit = %v", code, hit)
	}
	if code := send(http.MethodGet, ""); code != http.StatusOK || !hit {
		t.Fatalf("safe method: status = %d, hit = %v", code, hit)
	}
}

func TestRequireCSRFWithoutSession(t *testing.T) {
	m := newTestManager(t)

	hit := false
	handler := RequireCSRF(m)(okHandler(&hit))

	req := httptest.NewRequest(http.MethodPost, "/admin/pages", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || hit {
		t.Fatalf("status = %d, hit = %v", rec.Code, hit)
	}
}
