package userstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pressassist/pressauth/internal/jsonfile"
)

// FileStore keeps accounts in one JSON object keyed by username.
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

// NewFileStore opens (or creates) the account document at path.
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

// Create registers a new account. The ID, creation time, and active flag are
// assigned here; everything else comes from the caller.
func (fs *FileStore) Create(ctx context.Context, u User) (User, error) {
	if u.Username == "" {
		return User{}, fmt.Errorf("username empty")
	}
	if u.PasswordHash == "" {
		return User{}, fmt.Errorf("password hash empty")
	}

	u.ID = uuid.NewString()
	u.CreatedAt = fs.now().UTC()
	u.LastLogin = nil
	u.Active = true

	err := fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		users := decodeUsers(current)
		if _, taken := users[u.Username]; taken {
			return nil, false, fmt.Errorf("%w: %s", ErrExists, u.Username)
		}
		users[u.Username] = u

		next, err := json.Marshal(users)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Get returns the account for username.
func (fs *FileStore) Get(ctx context.Context, username string) (User, error) {
	data, err := fs.file.View(ctx)
	if err != nil {
		return User{}, err
	}

	u, ok := decodeUsers(data)[username]
	if !ok || !u.valid() {
		return User{}, fmt.Errorf("%w: %s", ErrNotFound, username)
	}
	return u, nil
}

// List returns every account sorted by username.
func (fs *FileStore) List(ctx context.Context) ([]User, error) {
	data, err := fs.file.View(ctx)
	if err != nil {
		return nil, err
	}

	users := decodeUsers(data)
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.valid() {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Update applies fn to the account under the exclusive lock. fn sees the
// current record and returns the replacement; identity fields (ID, username,
// creation time) are preserved regardless of what fn returns.
func (fs *FileStore) Update(ctx context.Context, username string, fn func(User) (User, error)) (User, error) {
	var updated User
	err := fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		users := decodeUsers(current)
		u, ok := users[username]
		if !ok || !u.valid() {
			return nil, false, fmt.Errorf("%w: %s", ErrNotFound, username)
		}

		next, err := fn(u)
		if err != nil {
			return nil, false, err
		}
		next.ID = u.ID
		next.Username = u.Username
		next.CreatedAt = u.CreatedAt

		users[username] = next
		updated = next

		raw, err := json.Marshal(users)
		if err != nil {
			return nil, false, err
		}
		return raw, true, nil
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

// Delete removes the account for username.
func (fs *FileStore) Delete(ctx context.Context, username string) error {
	return fs.file.Update(ctx, func(current []byte) ([]byte, bool, error) {
		users := decodeUsers(current)
		if _, ok := users[username]; !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrNotFound, username)
		}
		delete(users, username)

		next, err := json.Marshal(users)
		if err != nil {
			return nil, false, err
		}
		return next, true, nil
	})
}

// SetPassword replaces the account's password hash.
func (fs *FileStore) SetPassword(ctx context.Context, username, passwordHash string) error {
	if passwordHash == "" {
		return fmt.Errorf("password hash empty")
	}
	_, err := fs.Update(ctx, username, func(u User) (User, error) {
		u.PasswordHash = passwordHash
		return u, nil
	})
	return err
}

// TouchLogin stamps the account's last successful login.
func (fs *FileStore) TouchLogin(ctx context.Context, username string) error {
	now := fs.now().UTC()
	_, err := fs.Update(ctx, username, func(u User) (User, error) {
		u.LastLogin = &now
		return u, nil
	})
	return err
}

func decodeUsers(data []byte) map[string]User {
	users := make(map[string]User)
	if err := json.Unmarshal(data, &users); err != nil {
		return make(map[string]User)
	}
	return users
}
