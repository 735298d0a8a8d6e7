package pressauth

import "errors"

var (
	// ErrInvalidCredentials is returned when a login fails. Unknown
	// usernames and wrong passwords produce the same error so the two
	// cases cannot be told apart from outside.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited is returned when a client IP has exhausted its
	// failed-login budget.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrAccountDisabled is returned when the credentials are correct but
	// the account is deactivated.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrUserNotFound is returned by account management operations. Login
	// never returns it.
	ErrUserNotFound = errors.New("user not found")
	// ErrSessionNotFound is returned when a token resolves to no live
	// session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCSRFInvalid is returned when a CSRF token does not match the
	// session's token.
	ErrCSRFInvalid = errors.New("csrf token invalid")
	// ErrPermissionDenied is returned when a role lacks the requested
	// action.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrPasswordPolicy is returned when a new password fails the length
	// policy.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is returned when a new password equals the current
	// one.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrPasswordResetDisabled is returned when reset flows are not
	// configured.
	ErrPasswordResetDisabled = errors.New("password reset disabled")
	// ErrResetTokenInvalid is returned for reset tokens that fail
	// verification, including tokens invalidated by a password change.
	ErrResetTokenInvalid = errors.New("password reset token invalid")
	// ErrResetTokenExpired is returned for well-formed reset tokens past
	// their expiry.
	ErrResetTokenExpired = errors.New("password reset token expired")
	// ErrCredentialUpdateUnsupported is returned when an operation needs to
	// write a password hash but the configured CredentialSource is
	// read-only.
	ErrCredentialUpdateUnsupported = errors.New("credential source does not support updates")
	// ErrManagerNotReady is returned when a Manager method is called on a
	// nil or unbuilt Manager.
	ErrManagerNotReady = errors.New("manager not initialized")
)
