package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
)

// ErrLockTimeout is returned when the advisory lock could not be acquired
// within the configured bound.
var ErrLockTimeout = errors.New("file lock acquisition timed out")

const (
	defaultRetryDelay = 5 * time.Millisecond

	filePerm = 0o600
	dirPerm  = 0o755
)

var emptyDocument = []byte("{}\n")

// File is a JSON document on disk shared between cooperating worker
// processes. Readers take a shared advisory lock, writers an exclusive one;
// every write replaces the document wholesale via a temp file and atomic
// rename, so no partial state is ever observable.
//
// The lock lives in a sibling `<path>.lock` file rather than on the data
// file itself: the data file's inode changes on every rename, which would
// silently break mutual exclusion between a writer holding the old inode and
// a writer opening the new one.
type File struct {
	path        string
	lock        *flock.Flock
	lockTimeout time.Duration
	retryDelay  time.Duration
}

// Option configures a [File].
type Option func(*File)

// WithLockTimeout bounds how long lock acquisition may wait. Zero (the
// default) blocks until the lock is granted or the caller's context is
// cancelled; a stuck process holding the lock then stalls its peers, which
// is the historical behavior of this store family.
func WithLockTimeout(d time.Duration) Option {
	return func(f *File) {
		f.lockTimeout = d
	}
}

// WithRetryDelay sets the polling interval used while waiting for the lock.
func WithRetryDelay(d time.Duration) Option {
	return func(f *File) {
		if d > 0 {
			f.retryDelay = d
		}
	}
}

// New prepares a lock-protected JSON document at path, creating the parent
// directory and an empty document when absent.
func New(path string, opts ...Option) (*File, error) {
	if path == "" {
		return nil, errors.New("jsonfile path empty")
	}

	f := &File{
		path:       path,
		lock:       flock.New(path + ".lock"),
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := renameio.WriteFile(path, emptyDocument, filePerm); err != nil {
			return nil, fmt.Errorf("initialize %s: %w", path, err)
		}
	} else if err != nil {
		return nil, err
	}

	return f, nil
}

// Path returns the data file path.
func (f *File) Path() string {
	return f.path
}

// View reads the document under a shared lock. A missing file yields an
// empty JSON object rather than an error so that a concurrent first writer
// and reader do not race on file creation.
func (f *File) View(ctx context.Context) ([]byte, error) {
	unlock, err := f.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return f.readLocked()
}

// Update runs fn on the current document under an exclusive lock. When fn
// reports write=true the returned bytes replace the document atomically; a
// failed write leaves the previous document untouched and cleans up the
// temporary file.
func (f *File) Update(ctx context.Context, fn func(current []byte) (next []byte, write bool, err error)) error {
	unlock, err := f.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := f.readLocked()
	if err != nil {
		return err
	}

	next, write, err := fn(current)
	if err != nil {
		return err
	}
	if !write {
		return nil
	}

	if err := renameio.WriteFile(f.path, next, filePerm); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}

	return nil
}

func (f *File) readLocked() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyDocument, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return emptyDocument, nil
	}
	return data, nil
}

// acquire takes the advisory lock, exclusive or shared, honoring the
// configured timeout and the caller's context. It returns the matching
// unlock function.
func (f *File) acquire(ctx context.Context, exclusive bool) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}

	lockCtx := ctx
	if f.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, f.lockTimeout)
		defer cancel()
	}

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = f.lock.TryLockContext(lockCtx, f.retryDelay)
	} else {
		ok, err = f.lock.TryRLockContext(lockCtx, f.retryDelay)
	}
	if err != nil {
		if f.lockTimeout > 0 && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, f.path)
		}
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, f.path)
	}

	return func() { _ = f.lock.Unlock() }, nil
}
