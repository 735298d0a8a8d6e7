package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// FileSink appends events to a JSON Lines file, one complete object per
// line. Appends are O_APPEND writes under a mutex; cleanup rewrites the file
// atomically.
type FileSink struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileSink prepares an append-only audit log at path, creating the parent
// directory when absent.
func NewFileSink(path string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileSink{path: path, now: time.Now}, nil
}

// Emit appends one event. Write failures are swallowed: the audit trail must
// never take down a login.
func (s *FileSink) Emit(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(data, '\n'))
}

// ReadRecent returns up to limit most recent entries, oldest first. Lines
// that fail to parse are skipped.
func (s *FileSink) ReadRecent(limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	return events, nil
}

// CleanupOldEntries drops entries older than maxAge and returns how many
// were removed.
func (s *FileSink) CleanupOldEntries(maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-maxAge)
	var kept []byte
	removed := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var e Event
		if err := json.Unmarshal(line, &e); err != nil || e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, line...)
		kept = append(kept, '\n')
	}
	scanErr := scanner.Err()
	_ = f.Close()
	if scanErr != nil {
		return 0, scanErr
	}
	if removed == 0 {
		return 0, nil
	}

	if err := renameio.WriteFile(s.path, kept, 0o600); err != nil {
		return 0, err
	}
	return removed, nil
}
