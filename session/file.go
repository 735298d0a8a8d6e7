package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pressassist/pressauth/internal/jsonfile"
)

// FileStore keeps sessions in a single flat JSON document: an object keyed
// by token, one session record per entry. All access goes through an
// advisory file lock (shared for reads, exclusive for writes) and every
// write replaces the file atomically, so independent worker processes can
// share one file safely.
//
// A document that fails to parse as a whole is treated as empty and
// rewritten on the next mutation rather than wedging every login.
type FileStore struct {
	file *jsonfile.File
	now  func() time.Time
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

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) FileOption {
	return func(fs *FileStore, _ *[]jsonfile.Option) {
		fs.now = now
	}
}

// NewFileStore opens (or creates) the session document at path.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	fs := &FileStore{now: time.Now}

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

// Save persists the session under its token, replacing any previous record.
func (fs *FileStore) Save(ctx context.Context, token string, s Session) error {
	return fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		records := decodeDocument(current)

		raw, err := json.Marshal(s)
		if err != nil {
			return nil, false, err
		}
		records[token] = raw

		next, err := encodeDocument(records)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
}

// Get returns the live session for token. An expired or undecodable record
// is deleted as a side effect and reported as [ErrNotFound].
func (fs *FileStore) Get(ctx context.Context, token string) (Session, error) {
	data, err := fs.file.View(ctx)
	if err != nil {
		return Session{}, err
	}

	records := decodeDocument(data)
	raw, ok := records[token]
	if !ok {
		return Session{}, ErrNotFound
	}

	s, ok := decodeRecord(raw)
	if ok && !s.Expired(fs.now()) {
		return s, nil
	}

	// Dead record: drop the shared lock, re-check under the exclusive one
	// and remove it so the file does not accumulate garbage.
	if _, err := fs.Delete(ctx, token); err != nil {
		return Session{}, err
	}
	return Session{}, ErrNotFound
}

// Delete removes the record for token and reports whether one existed.
// Absent tokens are a no-op.
func (fs *FileStore) Delete(ctx context.Context, token string) (bool, error) {
	existed := false
	err := fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		records := decodeDocument(current)
		if _, ok := records[token]; !ok {
			return nil, false, nil
		}
		existed = true
		delete(records, token)

		next, err := encodeDocument(records)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// DeleteForUser removes every session belonging to userID.
func (fs *FileStore) DeleteForUser(ctx context.Context, userID string) (int, error) {
	removed := 0
	err := fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		records := decodeDocument(current)
		for token, raw := range records {
			s, ok := decodeRecord(raw)
			if ok && s.UserID == userID {
				delete(records, token)
				removed++
			}
		}
		if removed == 0 {
			return nil, false, nil
		}

		next, err := encodeDocument(records)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// CleanupExpired removes every expired or undecodable record.
func (fs *FileStore) CleanupExpired(ctx context.Context) (int, error) {
	removed := 0
	err := fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		now := fs.now()
		records := decodeDocument(current)
		for token, raw := range records {
			s, ok := decodeRecord(raw)
			if !ok || s.Expired(now) {
				delete(records, token)
				removed++
			}
		}
		if removed == 0 {
			return nil, false, nil
		}

		next, err := encodeDocument(records)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of live sessions in the document.
func (fs *FileStore) Count(ctx context.Context) (int, error) {
	data, err := fs.file.View(ctx)
	if err != nil {
		return 0, err
	}

	now := fs.now()
	count := 0
	for _, raw := range decodeDocument(data) {
		if s, ok := decodeRecord(raw); ok && !s.Expired(now) {
			count++
		}
	}
	return count, nil
}

// CountForUser returns the number of live sessions belonging to userID.
func (fs *FileStore) CountForUser(ctx context.Context, userID string) (int, error) {
	data, err := fs.file.View(ctx)
	if err != nil {
		return 0, err
	}

	now := fs.now()
	count := 0
	for _, raw := range decodeDocument(data) {
		if s, ok := decodeRecord(raw); ok && s.UserID == userID && !s.Expired(now) {
			count++
		}
	}
	return count, nil
}

// decodeDocument parses the whole session file. Undecodable documents yield
// an empty map so a corrupted file degrades to "no sessions" instead of a
// hard failure.
func decodeDocument(data []byte) map[string]json.RawMessage {
	records := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &records); err != nil {
		return make(map[string]json.RawMessage)
	}
	return records
}

func encodeDocument(records map[string]json.RawMessage) ([]byte, error) {
	return json.Marshal(records)
}

// decodeRecord parses one session entry, reporting false for records that
// do not decode or are structurally unusable.
func decodeRecord(raw json.RawMessage) (Session, bool) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, false
	}
	return s, s.valid()
}
