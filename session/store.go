package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a token resolves to no live session, whether
// it never existed, expired, or its record could not be decoded.
var ErrNotFound = errors.New("session not found")

// Store is the persistence contract for sessions. Implementations must be
// safe for concurrent use.
type Store interface {
	// Save persists the session under its token, replacing any previous
	// record for that token.
	Save(ctx context.Context, token string, s Session) error

	// Get returns the live session for token. Expired and corrupt records
	// are removed as a side effect and reported as ErrNotFound.
	Get(ctx context.Context, token string) (Session, error)

	// Delete removes the record for token and reports whether one existed.
	// Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) (bool, error)

	// DeleteForUser removes every session belonging to userID and returns
	// how many were removed.
	DeleteForUser(ctx context.Context, userID string) (int, error)

	// CleanupExpired removes every expired or undecodable record and
	// returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)

	// CountForUser returns the number of live sessions belonging to userID.
	CountForUser(ctx context.Context, userID string) (int, error)
}
