package pressauth

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ConfigFromEnv builds a Config from PRESSAUTH_* environment variables,
// optionally loading a dotenv file first. Unset variables keep their
// [DefaultConfig] values; a missing dotenv file is not an error.
//
// Recognized variables:
//
//	PRESSAUTH_SESSION_LIFETIME_HOURS
//	PRESSAUTH_RATE_LIMIT_ATTEMPTS
//	PRESSAUTH_RATE_LIMIT_WINDOW_MINUTES
//	PRESSAUTH_BCRYPT_ROUNDS
//	PRESSAUTH_PASSWORD_MIN_LENGTH
//	PRESSAUTH_RESET_SECRET
//	PRESSAUTH_RESET_TTL_MINUTES
//	PRESSAUTH_SESSION_FILE
//	PRESSAUTH_RATE_LIMIT_FILE
//	PRESSAUTH_LOCK_TIMEOUT_MS
//	PRESSAUTH_AUDIT_ENABLED
//	PRESSAUTH_METRICS_ENABLED
func ConfigFromEnv(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	cfg := DefaultConfig()

	if v, ok := envInt("PRESSAUTH_SESSION_LIFETIME_HOURS"); ok {
		cfg.Session.Lifetime = time.Duration(v) * time.Hour
	}
	if v, ok := envInt("PRESSAUTH_RATE_LIMIT_ATTEMPTS"); ok {
		cfg.RateLimit.MaxAttempts = v
	}
	if v, ok := envInt("PRESSAUTH_RATE_LIMIT_WINDOW_MINUTES"); ok {
		cfg.RateLimit.Window = time.Duration(v) * time.Minute
	}
	if v, ok := envInt("PRESSAUTH_BCRYPT_ROUNDS"); ok {
		cfg.Password.Cost = v
	}
	if v, ok := envInt("PRESSAUTH_PASSWORD_MIN_LENGTH"); ok {
		cfg.Password.MinLength = v
	}
	if v := os.Getenv("PRESSAUTH_RESET_SECRET"); v != "" {
		cfg.Reset.Enabled = true
		cfg.Reset.Secret = []byte(v)
	}
	if v, ok := envInt("PRESSAUTH_RESET_TTL_MINUTES"); ok {
		cfg.Reset.TTL = time.Duration(v) * time.Minute
	}
	if v := os.Getenv("PRESSAUTH_SESSION_FILE"); v != "" {
		cfg.Storage.SessionFile = v
	}
	if v := os.Getenv("PRESSAUTH_RATE_LIMIT_FILE"); v != "" {
		cfg.Storage.RateLimitFile = v
	}
	if v, ok := envInt("PRESSAUTH_LOCK_TIMEOUT_MS"); ok {
		cfg.Storage.LockTimeout = time.Duration(v) * time.Millisecond
	}
	if v, ok := envBool("PRESSAUTH_AUDIT_ENABLED"); ok {
		cfg.Audit.Enabled = v
	}
	if v, ok := envBool("PRESSAUTH_METRICS_ENABLED"); ok {
		cfg.Metrics.Enabled = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envBool(key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
