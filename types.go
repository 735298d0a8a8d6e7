package pressauth

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/pressassist/pressauth/internal/audit"
	"github.com/pressassist/pressauth/session"
	"github.com/pressassist/pressauth/userstore"
)

// Credential is the minimal account view the Manager needs to authenticate
// a user.
type Credential struct {
	UserID       string
	Username     string
	PasswordHash string
	Role         string
	Disabled     bool
}

// CredentialSource is the interface callers implement to plug their account
// storage into the Manager. Lookup must return [ErrUserNotFound] (or an
// error wrapping it) for unknown usernames.
type CredentialSource interface {
	Lookup(ctx context.Context, username string) (Credential, error)
}

// CredentialUpdater is implemented by credential sources that can persist a
// new password hash. Password changes, resets, and cost upgrades on login
// require it.
type CredentialUpdater interface {
	UpdatePasswordHash(ctx context.Context, username, newHash string) error
}

// Session is the session record shared with the session sub-package.
type Session = session.Session

// LoginResult is returned by [Manager.Login].
type LoginResult struct {
	Token     string
	CSRFToken string
	Session   Session
}

// AuditEvent is a structured audit record emitted by the Manager.
type AuditEvent = audit.Event

// AuditSink receives [AuditEvent] values from the Manager's audit
// dispatcher.
type AuditSink = audit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = audit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = audit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = audit.JSONWriterSink

// FileSink is an [AuditSink] appending JSON Lines to a log file.
type FileSink = audit.FileSink

// SlogSink is an [AuditSink] mirroring events into a structured logger.
type SlogSink = audit.SlogSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewFileSink creates a [FileSink] appending to the file at path.
func NewFileSink(path string) (*FileSink, error) {
	return audit.NewFileSink(path)
}

// NewSlogSink creates a [SlogSink] writing through logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return audit.NewSlogSink(logger)
}

// FileCredentials adapts a [userstore.FileStore] into a [CredentialSource]
// with update support.
func FileCredentials(store *userstore.FileStore) interface {
	CredentialSource
	CredentialUpdater
} {
	return fileCredentials{store: store}
}

type fileCredentials struct {
	store *userstore.FileStore
}

func (f fileCredentials) Lookup(ctx context.Context, username string) (Credential, error) {
	u, err := f.store.Get(ctx, username)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return Credential{}, ErrUserNotFound
		}
		return Credential{}, err
	}
	return Credential{
		UserID:       u.Username,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Disabled:     !u.Active,
	}, nil
}

func (f fileCredentials) UpdatePasswordHash(ctx context.Context, username, newHash string) error {
	err := f.store.SetPassword(ctx, username, newHash)
	if errors.Is(err, userstore.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
