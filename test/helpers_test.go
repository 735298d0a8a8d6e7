//go:build integration
// +build integration

package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pressassist/pressauth"
	"github.com/pressassist/pressauth/password"
	"github.com/pressassist/pressauth/userstore"
)

// seedPassword is the plaintext every seeded account uses.
const seedPassword = "correct-horse"

type dataFiles struct {
	sessions  string
	ratelimit string
	users     string
}

func tempFiles(t *testing.T) dataFiles {
	t.Helper()
	dir := t.TempDir()
	return dataFiles{
		sessions:  filepath.Join(dir, "sessions.json"),
		ratelimit: filepath.Join(dir, "login_attempts.json"),
		users:     filepath.Join(dir, "users.json"),
	}
}

// newIntegrationManager builds a manager over real data files, seeding one
// editor account. Rebuilding with the same files simulates a restart.
func newIntegrationManager(t *testing.T, files dataFiles) (*pressauth.Manager, *userstore.FileStore) {
	t.Helper()

	cfg := pressauth.DefaultConfig()
	cfg.Password.Cost = 4
	cfg.Audit.Enabled = false
	cfg.Storage.SessionFile = files.sessions
	cfg.Storage.RateLimitFile = files.ratelimit

	users, err := userstore.NewFileStore(files.users)
	if err != nil {
		t.Fatalf("user store: %v", err)
	}
	seedUser(t, users, "alice", "editor")

	m, err := pressauth.New().
		WithConfig(cfg).
		WithCredentials(pressauth.FileCredentials(users)).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, users
}

func seedUser(t *testing.T, users *userstore.FileStore, username, role string) {
	t.Helper()

	ctx := context.Background()
	if _, err := users.Get(ctx, username); err == nil {
		return
	}

	hasher, err := password.NewBcrypt(password.Config{Cost: 4})
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := users.Create(ctx, userstore.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}); err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
}

func loginContext(ip string) context.Context {
	ctx := pressauth.WithClientIP(context.Background(), ip)
	return pressauth.WithUserAgent(ctx, "integration-test")
}
