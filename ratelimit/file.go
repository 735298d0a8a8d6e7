package ratelimit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pressassist/pressauth/internal/jsonfile"
)

// FileStore keeps attempt history in a flat JSON document: an object keyed
// by client IP, each value an ordered list of attempts. Locking and atomic
// replacement follow the session file store, so web workers and CLI tools
// can share the file.
type FileStore struct {
	file   *jsonfile.File
	policy Policy
	now    func() time.Time
}

// FileOption configures a [FileStore].
type FileOption func(*FileStore, *[]jsonfile.Option)

// WithLockTimeout bounds how long the store waits for the advisory file
// lock. Zero blocks until the lock is granted or the context is cancelled.
func WithLockTimeout(d time.Duration) FileOption {
	return func(_ *FileStore, opts *[]jsonfile.Option) {
		*opts = append(*opts, jsonfile.WithLockTimeout(d))
	}
}

func withClock(now func() time.Time) FileOption {
	return func(fs *FileStore, _ *[]jsonfile.Option) {
		fs.now = now
	}
}

// NewFileStore opens (or creates) the attempt document at path.
func NewFileStore(path string, policy Policy, opts ...FileOption) (*FileStore, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	fs := &FileStore{policy: policy, now: time.Now}

	var fileOpts []jsonfile.Option
	for _, opt := range opts {
		opt(fs, &fileOpts)
	}

	file, err := jsonfile.New(path, fileOpts...)
	if err != nil {
		return nil, err
	}
	fs.file = file

	return fs, nil
}

// Record appends an attempt for ip after pruning entries older than the
// window.
func (fs *FileStore) Record(ctx context.Context, ip string, success bool, userAgent *string) error {
	return fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		now := fs.now()
		history := decodeHistory(current)

		attempts := pruneAttempts(history[ip], now.Add(-fs.policy.Window))
		attempts = append(attempts, Attempt{
			Timestamp: now.UTC(),
			Success:   success,
			UserAgent: userAgent,
		})
		history[ip] = attempts

		next, err := json.Marshal(history)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
}

// Allowed reports whether ip has headroom under the failure limit.
func (fs *FileStore) Allowed(ctx context.Context, ip string) (bool, error) {
	failed, err := fs.FailedCount(ctx, ip)
	if err != nil {
		return false, err
	}
	return failed < fs.policy.MaxAttempts, nil
}

// FailedCount returns how many failures ip has inside the window.
func (fs *FileStore) FailedCount(ctx context.Context, ip string) (int, error) {
	data, err := fs.file.View(ctx)
	if err != nil {
		return 0, err
	}

	history := decodeHistory(data)
	return countFailures(history[ip], fs.now().Add(-fs.policy.Window)), nil
}

// Cleanup prunes attempts that fell out of the window for every client and
// returns how many clients had stale entries removed. Clients left with no
// attempts at all are dropped from the document.
func (fs *FileStore) Cleanup(ctx context.Context) (int, error) {
	cleaned := 0
	err := fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		cutoff := fs.now().Add(-fs.policy.Window)
		history := decodeHistory(current)

		for ip, attempts := range history {
			kept := pruneAttempts(attempts, cutoff)
			if len(kept) == len(attempts) {
				continue
			}
			cleaned++
			if len(kept) == 0 {
				delete(history, ip)
				continue
			}
			history[ip] = kept
		}
		if cleaned == 0 {
			return nil, false, nil
		}

		next, err := json.Marshal(history)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return 0, err
	}
	return cleaned, nil
}

func decodeHistory(data []byte) map[string][]Attempt {
	history := make(map[string][]Attempt)
	if err := json.Unmarshal(data, &history); err != nil {
		return make(map[string][]Attempt)
	}
	return history
}

// pruneAttempts keeps attempts at or after cutoff, preserving order.
func pruneAttempts(attempts []Attempt, cutoff time.Time) []Attempt {
	kept := attempts[:0:0]
	for _, a := range attempts {
		if !a.Timestamp.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	return kept
}

func countFailures(attempts []Attempt, cutoff time.Time) int {
	failed := 0
	for _, a := range attempts {
		if !a.Success && !a.Timestamp.Before(cutoff) {
			failed++
		}
	}
	return failed
}
