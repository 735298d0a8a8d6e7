package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps backend transport failures.
var ErrUnavailable = errors.New("rate limit store unavailable")

// Attempt is one recorded login attempt. UserAgent is a pointer so an
// attempt with no User-Agent header serializes as null rather than "".
type Attempt struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	UserAgent *string   `json:"user_agent"`
}

// Policy is the sliding-window limit applied to every client.
type Policy struct {
	// MaxAttempts is how many failed attempts inside Window are tolerated
	// before further attempts are refused.
	MaxAttempts int

	// Window is the sliding interval failures are counted over.
	Window time.Duration
}

// DefaultPolicy allows 5 failures per 15 minutes.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, Window: 15 * time.Minute}
}

func (p Policy) validate() error {
	if p.MaxAttempts <= 0 {
		return errors.New("ratelimit: MaxAttempts must be positive")
	}
	if p.Window <= 0 {
		return errors.New("ratelimit: Window must be positive")
	}
	return nil
}

// Store is the persistence contract for attempt history. Implementations
// must be safe for concurrent use.
type Store interface {
	// Record appends an attempt for ip, pruning entries that have aged out
	// of the window.
	Record(ctx context.Context, ip string, success bool, userAgent *string) error

	// Allowed reports whether ip is still under the failure limit. It never
	// mutates state.
	Allowed(ctx context.Context, ip string) (bool, error)

	// FailedCount returns how many failures ip has inside the window.
	FailedCount(ctx context.Context, ip string) (int, error)

	// Cleanup removes clients whose entire history has aged out and returns
	// how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
