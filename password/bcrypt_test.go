package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewBcrypt(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Fatalf("unexpected bcrypt prefix: %s", hash)
	}

	if !hasher.Verify("correct-horse-battery", hash) {
		t.Fatal("expected password verification to succeed")
	}
}

func TestHashIsSalted(t *testing.T) {
	hasher, err := NewBcrypt(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if first == second {
		t.Fatal("expected two hashes of the same password to differ")
	}
	if !hasher.Verify("same-password", first) || !hasher.Verify("same-password", second) {
		t.Fatal("expected both salted hashes to verify")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewBcrypt(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := hasher.Hash("right-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if hasher.Verify("wrong-password", hash) {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := NewBcrypt(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$04$tooshort", "$argon2id$v=19$m=65536"} {
		if hasher.Verify("password", hash) {
			t.Fatalf("expected malformed hash %q to verify as false", hash)
		}
	}
}

func TestVerifyEmptyPassword(t *testing.T) {
	hasher, err := NewBcrypt(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}

	hash, err := hasher.Hash("non-empty")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if hasher.Verify("", hash) {
		t.Fatal("expected empty password verification to fail")
	}
}

func TestNeedsUpgrade(t *testing.T) {
	oldHasher, err := NewBcrypt(Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt(old) error: %v", err)
	}

	hash, err := oldHasher.Hash("upgrade-me")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	newHasher, err := NewBcrypt(Config{Cost: 6})
	if err != nil {
		t.Fatalf("NewBcrypt(new) error: %v", err)
	}

	needsUpgrade, err := newHasher.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !needsUpgrade {
		t.Fatal("expected NeedsUpgrade to return true for lower-cost hash")
	}

	needsUpgrade, err = oldHasher.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if needsUpgrade {
		t.Fatal("expected NeedsUpgrade to return false for current cost")
	}
}

func TestDefaultCost(t *testing.T) {
	hasher, err := NewBcrypt(Config{})
	if err != nil {
		t.Fatalf("NewBcrypt error: %v", err)
	}
	if hasher.Cost() != DefaultCost {
		t.Fatalf("expected default cost %d, got %d", DefaultCost, hasher.Cost())
	}
}

func TestInvalidCost(t *testing.T) {
	if _, err := NewBcrypt(Config{Cost: 99}); err == nil {
		t.Fatal("expected out-of-range cost to be rejected")
	}
}

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("GeneratePassword error: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("expected 16 characters, got %d", len(pw))
	}
	for _, r := range pw {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Fatalf("character %q outside generation alphabet", r)
		}
	}

	other, err := GeneratePassword(16)
	if err != nil {
		t.Fatalf("GeneratePassword error: %v", err)
	}
	if pw == other {
		t.Fatal("expected two generated passwords to differ")
	}
}

func TestGenerateLoginSlug(t *testing.T) {
	slug, err := GenerateLoginSlug(32)
	if err != nil {
		t.Fatalf("GenerateLoginSlug error: %v", err)
	}
	if len(slug) != 32 {
		t.Fatalf("expected 32 characters, got %d", len(slug))
	}

	if _, err := GenerateLoginSlug(4); err == nil {
		t.Fatal("expected short slug length to be rejected")
	}
}
