package pressauth

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/pressassist/pressauth/internal/audit"
	"github.com/pressassist/pressauth/password"
	"github.com/pressassist/pressauth/permission"
	"github.com/pressassist/pressauth/ratelimit"
	"github.com/pressassist/pressauth/session"
)

// Builder assembles a [Manager]. Configure it with the chained With*
// methods, then call [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	sessions    session.Store
	limiter     ratelimit.Store
	credentials CredentialSource
	matrix      *permission.Matrix
	auditSink   AuditSink
	logger      *slog.Logger

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis switches the default session and rate-limit stores to Redis.
// Explicit WithSessionStore / WithRateLimitStore calls still win.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionStore overrides the session store chosen from configuration.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.sessions = store
	return b
}

// WithRateLimitStore overrides the rate-limit store chosen from
// configuration.
func (b *Builder) WithRateLimitStore(store ratelimit.Store) *Builder {
	b.limiter = store
	return b
}

// WithCredentials sets the account lookup backend. Required.
func (b *Builder) WithCredentials(source CredentialSource) *Builder {
	b.credentials = source
	return b
}

// WithPermissionMatrix replaces the built-in admin/editor/viewer matrix.
// The matrix is frozen during Build.
func (b *Builder) WithPermissionMatrix(m *permission.Matrix) *Builder {
	b.matrix = m
	return b
}

// WithAuditSink sets where audit events go. Defaults to a [SlogSink] on the
// configured logger.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the stores, and returns a ready
// Manager.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.credentials == nil {
		return nil, errors.New("credential source required")
	}

	hasher, err := password.NewBcrypt(password.Config{Cost: cfg.Password.Cost})
	if err != nil {
		return nil, err
	}

	matrix := b.matrix
	if matrix == nil {
		matrix = permission.DefaultMatrix()
	}
	matrix.Freeze()

	sessions, err := b.buildSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	limiter, err := b.buildRateLimitStore(cfg)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	sink := b.auditSink
	if sink == nil {
		sink = audit.NewSlogSink(logger)
	}

	m := &Manager{
		config:      cfg,
		hasher:      hasher,
		matrix:      matrix,
		sessions:    sessions,
		limiter:     limiter,
		credentials: b.credentials,
		logger:      logger,
		metrics:     NewMetrics(cfg.Metrics),
		auditor: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, sink),
	}

	if cfg.Reset.Enabled {
		resets, err := resetManager(cfg.Reset)
		if err != nil {
			return nil, err
		}
		m.resets = resets
	}

	b.built = true

	return m, nil
}

// buildSessionStore picks, in order: an injected store, Redis, the
// configured file, then process memory.
func (b *Builder) buildSessionStore(cfg Config) (session.Store, error) {
	if b.sessions != nil {
		return b.sessions, nil
	}
	if b.redis != nil {
		return session.NewRedisStore(b.redis), nil
	}
	if cfg.Storage.SessionFile != "" {
		return session.NewFileStore(cfg.Storage.SessionFile,
			session.WithLockTimeout(cfg.Storage.LockTimeout))
	}
	return session.NewMemoryStore(), nil
}

func (b *Builder) buildRateLimitStore(cfg Config) (ratelimit.Store, error) {
	policy := ratelimit.Policy{
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Window:      cfg.RateLimit.Window,
	}

	if b.limiter != nil {
		return b.limiter, nil
	}
	if b.redis != nil {
		return ratelimit.NewRedisStore(b.redis, policy)
	}
	if cfg.Storage.RateLimitFile != "" {
		return ratelimit.NewFileStore(cfg.Storage.RateLimitFile, policy,
			ratelimit.WithLockTimeout(cfg.Storage.LockTimeout))
	}
	return ratelimit.NewMemoryStore(policy)
}
