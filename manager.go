package pressauth

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pressassist/pressauth/internal"
	"github.com/pressassist/pressauth/internal/audit"
	"github.com/pressassist/pressauth/permission"
	"github.com/pressassist/pressauth/ratelimit"
	"github.com/pressassist/pressauth/resettoken"
	"github.com/pressassist/pressauth/session"
)

// Manager is the authentication facade: it issues and verifies sessions,
// throttles login attempts per IP, verifies credentials, and answers
// authorization questions against the permission matrix.
//
// Manager methods are safe for concurrent use after [Builder.Build].
type Manager struct {
	config      Config
	hasher      hasher
	matrix      *permission.Matrix
	sessions    session.Store
	limiter     ratelimit.Store
	credentials CredentialSource
	resets      *resettoken.Manager
	auditor     *audit.Dispatcher
	metrics     *Metrics
	logger      logger
	now         func() time.Time
}

type hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	NeedsUpgrade(hash string) (bool, error)
}

type logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Close flushes and stops the audit dispatcher. The Manager must not be
// used afterwards.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.auditor.Close()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (m *Manager) AuditDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.auditor.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all metrics.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// CreateSession issues a fresh session for userID with a random bearer
// token and CSRF token. The client IP and user agent are taken from ctx
// when present.
func (m *Manager) CreateSession(ctx context.Context, userID, role string) (string, Session, error) {
	if m == nil {
		return "", Session{}, ErrManagerNotReady
	}

	token, err := internal.NewSessionToken()
	if err != nil {
		return "", Session{}, fmt.Errorf("generate session token: %w", err)
	}
	csrf, err := internal.NewCSRFToken()
	if err != nil {
		return "", Session{}, fmt.Errorf("generate csrf token: %w", err)
	}

	now := m.clock().UTC()
	s := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		CSRFToken: csrf,
		CreatedAt: now,
		ExpiresAt: now.Add(m.config.Session.Lifetime),
	}

	if err := m.sessions.Save(ctx, token, s); err != nil {
		return "", Session{}, fmt.Errorf("save session: %w", err)
	}

	m.metricInc(MetricSessionCreated)
	return token, s, nil
}

// VerifySession resolves a bearer token to its live session. Expired and
// corrupt records are deleted by the store and reported as
// [ErrSessionNotFound].
func (m *Manager) VerifySession(ctx context.Context, token string) (Session, error) {
	if m == nil {
		return Session{}, ErrManagerNotReady
	}
	if token == "" {
		return Session{}, ErrSessionNotFound
	}

	start := m.clock()
	s, err := m.sessions.Get(ctx, token)
	m.metrics.Observe(MetricVerifyLatency, m.clock().Sub(start))

	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	return s, nil
}

// InvalidateSession removes one session and reports whether it existed.
// Unknown tokens are a no-op.
func (m *Manager) InvalidateSession(ctx context.Context, token string) (bool, error) {
	if m == nil {
		return false, ErrManagerNotReady
	}
	existed, err := m.sessions.Delete(ctx, token)
	if err != nil {
		return false, err
	}
	if existed {
		m.metricInc(MetricSessionInvalidated)
	}
	return existed, nil
}

// InvalidateUserSessions removes every session belonging to userID and
// returns how many were removed.
func (m *Manager) InvalidateUserSessions(ctx context.Context, userID string) (int, error) {
	if m == nil {
		return 0, ErrManagerNotReady
	}

	removed, err := m.sessions.DeleteForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	m.metricInc(MetricLogoutAll)
	m.emitAudit(ctx, AuditEvent{
		Event:   audit.EventSessionsInvalidate,
		Actor:   userID,
		Success: true,
		Details: map[string]string{"removed": fmt.Sprintf("%d", removed)},
	})
	return removed, nil
}

// VerifyCSRF compares a submitted CSRF token against the session's token in
// constant time.
func (m *Manager) VerifyCSRF(s Session, submitted string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if s.CSRFToken == "" || submitted == "" ||
		!hmac.Equal([]byte(s.CSRFToken), []byte(submitted)) {
		m.metricInc(MetricCSRFFailure)
		m.emitAudit(context.Background(), AuditEvent{
			Event:     audit.EventCSRFFailure,
			Actor:     s.UserID,
			SessionID: s.ID,
			IP:        s.IP,
			UserAgent: s.UserAgent,
		})
		return ErrCSRFInvalid
	}
	return nil
}

// CheckPermission reports whether role may perform action. Unknown roles
// and unknown actions are denied.
func (m *Manager) CheckPermission(role, action string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if !m.matrix.Allowed(permission.Role(role), action) {
		m.metricInc(MetricPermissionDenied)
		return ErrPermissionDenied
	}
	return nil
}

// Permissions lists the actions granted to role, sorted.
func (m *Manager) Permissions(role string) []string {
	if m == nil {
		return nil
	}
	return m.matrix.Actions(permission.Role(role))
}

// CheckRateLimit reports whether the IP attached to ctx may attempt a
// login. It never mutates rate-limit state.
func (m *Manager) CheckRateLimit(ctx context.Context) (bool, error) {
	if m == nil {
		return false, ErrManagerNotReady
	}
	return m.limiter.Allowed(ctx, clientIPFromContext(ctx))
}

// RecordLoginAttempt appends an attempt for the IP attached to ctx.
func (m *Manager) RecordLoginAttempt(ctx context.Context, success bool) error {
	if m == nil {
		return ErrManagerNotReady
	}

	var ua *string
	if v := userAgentFromContext(ctx); v != "" {
		ua = &v
	}
	return m.limiter.Record(ctx, clientIPFromContext(ctx), success, ua)
}

// CleanupExpiredSessions sweeps expired and corrupt session records.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) (int, error) {
	if m == nil {
		return 0, ErrManagerNotReady
	}
	removed, err := m.sessions.CleanupExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		m.emitAudit(ctx, AuditEvent{
			Event:   audit.EventSessionCleanup,
			Success: true,
			Details: map[string]string{"removed": fmt.Sprintf("%d", removed)},
		})
	}
	return removed, nil
}

// CleanupRateLimits removes clients whose attempt history has fully aged
// out.
func (m *Manager) CleanupRateLimits(ctx context.Context) (int, error) {
	if m == nil {
		return 0, ErrManagerNotReady
	}
	return m.limiter.Cleanup(ctx)
}

// SessionCount returns the number of live sessions.
func (m *Manager) SessionCount(ctx context.Context) (int, error) {
	if m == nil {
		return 0, ErrManagerNotReady
	}
	return m.sessions.Count(ctx)
}

// UserSessionCount returns the number of live sessions belonging to userID.
func (m *Manager) UserSessionCount(ctx context.Context, userID string) (int, error) {
	if m == nil {
		return 0, ErrManagerNotReady
	}
	return m.sessions.CountForUser(ctx, userID)
}

func (m *Manager) emitAudit(ctx context.Context, event AuditEvent) {
	if m == nil || m.auditor == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = m.clock().UTC()
	}
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = userAgentFromContext(ctx)
	}
	m.auditor.Emit(ctx, event)
}
