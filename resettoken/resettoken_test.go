package resettoken

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

var testSecret = bytes.Repeat([]byte("s"), 32)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.Issue("alice", "$2a$12$hash")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Verify(token, "alice", "$2a$12$hash")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Username != "alice" {
		t.Fatalf("Username = %s, want alice", claims.Username)
	}
	if claims.ID == "" {
		t.Fatal("token issued without an ID")
	}
}

func TestVerifyAfterPasswordChange(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.Issue("alice", "$2a$12$oldhash")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = m.Verify(token, "alice", "$2a$12$newhash")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid after password change, got %v", err)
	}
}

func TestVerifyWrongUser(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, _ := m.Issue("alice", "hash")
	if _, err := m.Verify(token, "mallory", "hash"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for wrong user, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t, time.Minute)
	issued := time.Now()
	m.now = func() time.Time { return issued }

	token, err := m.Issue("alice", "hash")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := m.Verify(token, "alice", "hash"); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, _ := m.Issue("alice", "hash")
	tampered := token[:len(token)-2] + "xx"
	if _, err := m.Verify(tampered, "alice", "hash"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for tampered token, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other, err := NewManager(bytes.Repeat([]byte("x"), 32), time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, _ := other.Issue("alice", "hash")
	if _, err := m.Verify(token, "alice", "hash"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for foreign signature, got %v", err)
	}
}

func TestManagerValidation(t *testing.T) {
	if _, err := NewManager([]byte("short"), time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
	if _, err := NewManager(testSecret, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
