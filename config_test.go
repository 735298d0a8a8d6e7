package pressauth

import (
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Session.Lifetime != 4*time.Hour {
		t.Fatalf("Session.Lifetime = %v", cfg.Session.Lifetime)
	}
	if cfg.RateLimit.MaxAttempts != 5 || cfg.RateLimit.Window != 15*time.Minute {
		t.Fatalf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Password.Cost != 12 {
		t.Fatalf("Password.Cost = %d", cfg.Password.Cost)
	}
	if !cfg.Audit.Enabled || cfg.Audit.MaxEntryAge != 90*24*time.Hour {
		t.Fatalf("Audit = %+v", cfg.Audit)
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	def := DefaultConfig()
	if cfg.Session.Lifetime != def.Session.Lifetime {
		t.Fatalf("Session.Lifetime = %v", cfg.Session.Lifetime)
	}
	if cfg.RateLimit.MaxAttempts != def.RateLimit.MaxAttempts {
		t.Fatalf("RateLimit.MaxAttempts = %d", cfg.RateLimit.MaxAttempts)
	}
	if cfg.Password.Cost != def.Password.Cost {
		t.Fatalf("Password.Cost = %d", cfg.Password.Cost)
	}
}

func TestValidateRejectsShortResetSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reset.Enabled = true
	cfg.Reset.Secret = []byte("short")

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short reset secret")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PRESSAUTH_SESSION_LIFETIME_HOURS", "8")
	t.Setenv("PRESSAUTH_RATE_LIMIT_ATTEMPTS", "3")
	t.Setenv("PRESSAUTH_RATE_LIMIT_WINDOW_MINUTES", "30")
	t.Setenv("PRESSAUTH_BCRYPT_ROUNDS", "10")
	t.Setenv("PRESSAUTH_SESSION_FILE", "/var/lib/cms/sessions.json")
	t.Setenv("PRESSAUTH_LOCK_TIMEOUT_MS", "2500")
	t.Setenv("PRESSAUTH_AUDIT_ENABLED", "false")

	cfg, err := ConfigFromEnv("")
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Session.Lifetime != 8*time.Hour {
		t.Fatalf("Session.Lifetime = %v", cfg.Session.Lifetime)
	}
	if cfg.RateLimit.MaxAttempts != 3 || cfg.RateLimit.Window != 30*time.Minute {
		t.Fatalf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.Password.Cost != 10 {
		t.Fatalf("Password.Cost = %d", cfg.Password.Cost)
	}
	if cfg.Storage.SessionFile != "/var/lib/cms/sessions.json" {
		t.Fatalf("Storage.SessionFile = %q", cfg.Storage.SessionFile)
	}
	if cfg.Storage.LockTimeout != 2500*time.Millisecond {
		t.Fatalf("Storage.LockTimeout = %v", cfg.Storage.LockTimeout)
	}
	if cfg.Audit.Enabled {
		t.Fatal("Audit.Enabled should be false")
	}
}

func TestConfigFromEnvResetSecret(t *testing.T) {
	t.Setenv("PRESSAUTH_RESET_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("PRESSAUTH_RESET_TTL_MINUTES", "45")

	cfg, err := ConfigFromEnv("")
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if !cfg.Reset.Enabled {
		t.Fatal("Reset.Enabled should follow the secret")
	}
	if cfg.Reset.TTL != 45*time.Minute {
		t.Fatalf("Reset.TTL = %v", cfg.Reset.TTL)
	}
}

func TestCloneConfigIsolatesSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reset.Secret = []byte("0123456789abcdef0123456789abcdef")

	clone := cloneConfig(cfg)
	clone.Reset.Secret[0] = 'X'
	if cfg.Reset.Secret[0] == 'X' {
		t.Fatal("clone shares the secret slice")
	}
}
