//go:build integration
// +build integration

package test

import (
	"errors"
	"testing"

	"github.com/pressassist/pressauth"
)

func TestFileBackendLoginSurvivesRestart(t *testing.T) {
	files := tempFiles(t)
	ctx := loginContext("203.0.113.9")

	m1, _ := newIntegrationManager(t, files)
	res, err := m1.Login(ctx, "alice", seedPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	m1.Close()

	// Fresh manager over the same files. The session must still verify.
	m2, _ := newIntegrationManager(t, files)
	s, err := m2.VerifySession(ctx, res.Token)
	if err != nil {
		t.Fatalf("verify after restart: %v", err)
	}
	if s.UserID != "alice" || s.Role != "editor" {
		t.Fatalf("session = %+v", s)
	}
	if err := m2.VerifyCSRF(s, res.CSRFToken); err != nil {
		t.Fatalf("csrf after restart: %v", err)
	}
}

func TestFileBackendRateLimitSurvivesRestart(t *testing.T) {
	files := tempFiles(t)
	ctx := loginContext("203.0.113.10")

	m1, _ := newIntegrationManager(t, files)
	cfg := pressauth.DefaultConfig()
	for i := 0; i < cfg.RateLimit.MaxAttempts; i++ {
		if _, err := m1.Login(ctx, "alice", "wrong"); !errors.Is(err, pressauth.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	m1.Close()

	m2, _ := newIntegrationManager(t, files)
	if _, err := m2.Login(ctx, "alice", seedPassword); !errors.Is(err, pressauth.ErrLoginRateLimited) {
		t.Fatalf("login after restart = %v, want rate limited", err)
	}

	// Another address is unaffected.
	if _, err := m2.Login(loginContext("198.51.100.4"), "alice", seedPassword); err != nil {
		t.Fatalf("login from other ip: %v", err)
	}
}

func TestFileBackendPasswordChangeEndToEnd(t *testing.T) {
	files := tempFiles(t)
	ctx := loginContext("203.0.113.11")

	m, users := newIntegrationManager(t, files)

	res, err := m.Login(ctx, "alice", seedPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := m.ChangePassword(ctx, "alice", seedPassword, "brand-new-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	// The old session is invalidated and the new hash is on disk.
	if _, err := m.VerifySession(ctx, res.Token); !errors.Is(err, pressauth.ErrSessionNotFound) {
		t.Fatalf("old session = %v, want not found", err)
	}
	if _, err := m.Login(ctx, "alice", seedPassword); !errors.Is(err, pressauth.ErrInvalidCredentials) {
		t.Fatalf("old password = %v, want invalid credentials", err)
	}
	if _, err := m.Login(ctx, "alice", "brand-new-password"); err != nil {
		t.Fatalf("new password: %v", err)
	}

	u, err := users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.PasswordHash == "" {
		t.Fatal("hash missing after change")
	}
}

func TestFileBackendCleanupSweeps(t *testing.T) {
	files := tempFiles(t)
	ctx := loginContext("203.0.113.12")

	m, _ := newIntegrationManager(t, files)
	if _, err := m.Login(ctx, "alice", seedPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	// Nothing is expired yet, so both sweeps are no-ops.
	removed, err := m.CleanupExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("cleanup sessions: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed %d live sessions", removed)
	}
	if _, err := m.CleanupRateLimits(ctx); err != nil {
		t.Fatalf("cleanup ratelimits: %v", err)
	}

	n, err := m.SessionCount(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}
