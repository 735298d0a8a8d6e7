package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Event names emitted by the authentication flows.
const (
	EventLoginSuccess       = "login_success"
	EventLoginFailed        = "login_failed"
	EventLoginRateLimited   = "login_rate_limited"
	EventLogout             = "logout"
	EventSessionsInvalidate = "sessions_invalidated"
	EventCSRFFailure        = "csrf_failure"
	EventSessionCleanup     = "session_expired_cleanup"
	EventPasswordChange     = "password_change"
	EventPasswordReset      = "password_reset"
)

// Event is one audit trail entry. Actor is the username or identifier of
// whoever performed the action; Details carries event-specific context.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Actor     string            `json:"actor"`
	SessionID string            `json:"session_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Sink receives emitted audit events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line to an arbitrary writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// SlogSink mirrors audit events into a structured logger. Failures log at
// warn, everything else at info.
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Emit(ctx context.Context, event Event) {
	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}

	attrs := []any{
		slog.String("event", event.Event),
		slog.String("actor", event.Actor),
		slog.Bool("success", event.Success),
	}
	if event.IP != "" {
		attrs = append(attrs, slog.String("ip", event.IP))
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}

	s.logger.Log(ctx, level, "audit", attrs...)
}
