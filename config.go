package pressauth

import (
	"errors"
	"time"
)

// Config carries every tunable of the Manager. Zero values are filled in
// from [DefaultConfig] during [Builder.Build]; a Config is treated as
// immutable once the Manager is built.
type Config struct {
	Session   SessionConfig
	RateLimit RateLimitConfig
	Password  PasswordConfig
	Reset     ResetConfig
	Storage   StorageConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session issuance and lifetime.
type SessionConfig struct {
	// Lifetime is how long a session stays valid after creation.
	Lifetime time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig controls the per-IP failed-login window.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig controls credential hashing.
type PasswordConfig struct {
	// Cost is the bcrypt work factor.
	Cost int

	// UpgradeOnLogin rehashes credentials at the configured cost after a
	// successful login when the stored hash uses a lower one. Requires a
	// CredentialSource that also implements [CredentialUpdater].
	UpgradeOnLogin bool

	// MinLength is the minimum accepted length for new passwords.
	MinLength int
}

/*
====================================
PASSWORD RESET CONFIG
====================================
*/

// ResetConfig controls the password reset token flow. The flow stays
// disabled until a secret of at least 32 bytes is provided.
type ResetConfig struct {
	Enabled bool
	Secret  []byte
	TTL     time.Duration
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig locates the shared JSON files used by the default stores.
// Paths are used as given; callers place them inside their data directory.
type StorageConfig struct {
	SessionFile   string
	RateLimitFile string

	// LockTimeout bounds how long file stores wait for the advisory lock.
	// Zero blocks until the lock is granted or the context is cancelled.
	LockTimeout time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool

	// MaxEntryAge bounds retention for the file sink's cleanup sweep.
	MaxEntryAge time.Duration
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the settings the CMS ships with: four-hour
// sessions, five failed logins per quarter hour, bcrypt cost 12, and a
// 90-day audit retention.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Lifetime: 4 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts: 5,
			Window:      15 * time.Minute,
		},
		Password: PasswordConfig{
			Cost:      12,
			MinLength: 8,
		},
		Reset: ResetConfig{
			TTL: time.Hour,
		},
		Audit: AuditConfig{
			Enabled:     true,
			BufferSize:  256,
			DropIfFull:  true,
			MaxEntryAge: 90 * 24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func defaultConfig() Config { return DefaultConfig() }

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Reset.Secret = append([]byte(nil), cfg.Reset.Secret...)
	return out
}

// Validate fills unset fields from defaults and rejects combinations the
// Manager cannot honor.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.Session.Lifetime == 0 {
		c.Session.Lifetime = def.Session.Lifetime
	}
	if c.RateLimit.MaxAttempts <= 0 {
		c.RateLimit.MaxAttempts = def.RateLimit.MaxAttempts
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = def.RateLimit.Window
	}
	if c.Password.Cost == 0 {
		c.Password.Cost = def.Password.Cost
	}
	if c.Password.MinLength <= 0 {
		c.Password.MinLength = def.Password.MinLength
	}
	if c.Reset.TTL <= 0 {
		c.Reset.TTL = def.Reset.TTL
	}
	if c.Audit.BufferSize <= 0 {
		c.Audit.BufferSize = def.Audit.BufferSize
	}
	if c.Audit.MaxEntryAge <= 0 {
		c.Audit.MaxEntryAge = def.Audit.MaxEntryAge
	}

	if c.Reset.Enabled && len(c.Reset.Secret) < 32 {
		return errors.New("Reset.Enabled requires a secret of at least 32 bytes")
	}
	if c.Storage.LockTimeout < 0 {
		return errors.New("Storage.LockTimeout must not be negative")
	}

	return nil
}
