package pressauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/pressassist/pressauth/internal/audit"
	"github.com/pressassist/pressauth/resettoken"
)

// Login authenticates username/password and issues a session. The rate
// limit is consulted before the password is ever verified, so a blocked IP
// learns nothing about credential validity. Unknown usernames and wrong
// passwords both fail with [ErrInvalidCredentials].
func (m *Manager) Login(ctx context.Context, username, plaintext string) (*LoginResult, error) {
	if m == nil {
		return nil, ErrManagerNotReady
	}

	ip := clientIPFromContext(ctx)

	allowed, err := m.CheckRateLimit(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		m.metricInc(MetricLoginRateLimited)
		m.emitAudit(ctx, AuditEvent{
			Event: audit.EventLoginRateLimited,
			Actor: username,
			Error: ErrLoginRateLimited.Error(),
		})
		return nil, ErrLoginRateLimited
	}

	cred, err := m.credentials.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Indistinguishable from a wrong password.
			return nil, m.failLogin(ctx, username)
		}
		return nil, fmt.Errorf("credential lookup: %w", err)
	}

	if !m.hasher.Verify(plaintext, cred.PasswordHash) {
		return nil, m.failLogin(ctx, username)
	}

	if cred.Disabled {
		m.emitAudit(ctx, AuditEvent{
			Event: audit.EventLoginFailed,
			Actor: username,
			Error: ErrAccountDisabled.Error(),
		})
		return nil, ErrAccountDisabled
	}

	m.maybeUpgradeHash(ctx, cred, plaintext)

	if err := m.RecordLoginAttempt(ctx, true); err != nil {
		m.logger.Warn("recording successful login attempt failed", "ip", ip, "err", err)
	}

	token, s, err := m.CreateSession(ctx, cred.UserID, cred.Role)
	if err != nil {
		return nil, err
	}

	m.metricInc(MetricLoginSuccess)
	m.emitAudit(ctx, AuditEvent{
		Event:     audit.EventLoginSuccess,
		Actor:     username,
		SessionID: s.ID,
		Success:   true,
	})

	return &LoginResult{Token: token, CSRFToken: s.CSRFToken, Session: s}, nil
}

// failLogin records the failed attempt and emits the audit event shared by
// unknown-user and wrong-password outcomes.
func (m *Manager) failLogin(ctx context.Context, username string) error {
	if err := m.RecordLoginAttempt(ctx, false); err != nil {
		m.logger.Warn("recording failed login attempt failed",
			"ip", clientIPFromContext(ctx), "err", err)
	}

	m.metricInc(MetricLoginFailure)
	m.emitAudit(ctx, AuditEvent{
		Event: audit.EventLoginFailed,
		Actor: username,
		Error: ErrInvalidCredentials.Error(),
	})
	return ErrInvalidCredentials
}

// maybeUpgradeHash rehashes the credential at the configured cost when the
// stored hash is weaker. Best effort: a failure leaves the old hash valid.
func (m *Manager) maybeUpgradeHash(ctx context.Context, cred Credential, plaintext string) {
	if !m.config.Password.UpgradeOnLogin {
		return
	}
	updater, ok := m.credentials.(CredentialUpdater)
	if !ok {
		return
	}

	needs, err := m.hasher.NeedsUpgrade(cred.PasswordHash)
	if err != nil || !needs {
		return
	}

	newHash, err := m.hasher.Hash(plaintext)
	if err != nil {
		return
	}
	if err := updater.UpdatePasswordHash(ctx, cred.Username, newHash); err != nil {
		m.logger.Warn("password hash upgrade failed", "user", cred.Username, "err", err)
	}
}

// Logout invalidates the session behind token. Unknown tokens are not an
// error, but only a token that resolved to a session counts as a logout.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if m == nil {
		return ErrManagerNotReady
	}

	s, err := m.VerifySession(ctx, token)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}

	existed, err := m.sessions.Delete(ctx, token)
	if err != nil {
		return err
	}

	if existed {
		m.metricInc(MetricLogout)
	}
	if s.UserID != "" {
		m.emitAudit(ctx, AuditEvent{
			Event:     audit.EventLogout,
			Actor:     s.UserID,
			SessionID: s.ID,
			Success:   true,
		})
	}
	return nil
}

// ChangePassword verifies the current password, applies the length policy,
// stores the new hash, and invalidates every session of the user.
func (m *Manager) ChangePassword(ctx context.Context, username, current, next string) error {
	if m == nil {
		return ErrManagerNotReady
	}

	updater, ok := m.credentials.(CredentialUpdater)
	if !ok {
		return ErrCredentialUpdateUnsupported
	}

	cred, err := m.credentials.Lookup(ctx, username)
	if err != nil {
		return err
	}

	if !m.hasher.Verify(current, cred.PasswordHash) {
		m.metricInc(MetricPasswordChangeInvalidOld)
		return ErrInvalidCredentials
	}
	if len(next) < m.config.Password.MinLength {
		return ErrPasswordPolicy
	}
	if next == current {
		m.metricInc(MetricPasswordChangeReuseRejected)
		return ErrPasswordReuse
	}

	newHash, err := m.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := updater.UpdatePasswordHash(ctx, username, newHash); err != nil {
		return err
	}

	if _, err := m.sessions.DeleteForUser(ctx, cred.UserID); err != nil {
		m.logger.Warn("session invalidation after password change failed",
			"user", username, "err", err)
	}

	m.metricInc(MetricPasswordChangeSuccess)
	m.emitAudit(ctx, AuditEvent{
		Event:   audit.EventPasswordChange,
		Actor:   username,
		Success: true,
	})
	return nil
}

// RequestPasswordReset issues a reset token for username. The caller owns
// delivery; the token is never logged or persisted.
func (m *Manager) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	if m == nil {
		return "", ErrManagerNotReady
	}
	if m.resets == nil {
		return "", ErrPasswordResetDisabled
	}

	cred, err := m.credentials.Lookup(ctx, username)
	if err != nil {
		return "", err
	}

	token, err := m.resets.Issue(cred.Username, cred.PasswordHash)
	if err != nil {
		return "", err
	}

	m.metricInc(MetricPasswordResetRequest)
	m.emitAudit(ctx, AuditEvent{
		Event:   audit.EventPasswordReset,
		Actor:   username,
		Success: true,
		Details: map[string]string{"phase": "requested"},
	})
	return token, nil
}

// ConfirmPasswordReset redeems a reset token and installs the new password.
// Tokens stop verifying as soon as the password changes, so each token is
// effectively single use.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, username, token, next string) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if m.resets == nil {
		return ErrPasswordResetDisabled
	}

	updater, ok := m.credentials.(CredentialUpdater)
	if !ok {
		return ErrCredentialUpdateUnsupported
	}

	cred, err := m.credentials.Lookup(ctx, username)
	if err != nil {
		return err
	}

	if _, err := m.resets.Verify(token, cred.Username, cred.PasswordHash); err != nil {
		m.metricInc(MetricPasswordResetConfirmFailure)
		m.emitAudit(ctx, AuditEvent{
			Event: audit.EventPasswordReset,
			Actor: username,
			Error: err.Error(),
		})
		if errors.Is(err, resettoken.ErrExpired) {
			return ErrResetTokenExpired
		}
		return ErrResetTokenInvalid
	}

	if len(next) < m.config.Password.MinLength {
		return ErrPasswordPolicy
	}

	newHash, err := m.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := updater.UpdatePasswordHash(ctx, username, newHash); err != nil {
		return err
	}

	if _, err := m.sessions.DeleteForUser(ctx, cred.UserID); err != nil {
		m.logger.Warn("session invalidation after password reset failed",
			"user", username, "err", err)
	}

	m.metricInc(MetricPasswordResetConfirmSuccess)
	m.emitAudit(ctx, AuditEvent{
		Event:   audit.EventPasswordReset,
		Actor:   username,
		Success: true,
		Details: map[string]string{"phase": "confirmed"},
	})
	return nil
}

func resetManager(cfg ResetConfig) (*resettoken.Manager, error) {
	return resettoken.NewManager(cfg.Secret, cfg.TTL)
}
