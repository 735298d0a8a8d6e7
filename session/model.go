package session

import "time"

// Session is one authenticated session. Field tags define the on-disk and
// on-wire representation; timestamps serialize as RFC 3339 in UTC.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CSRFToken string    `json:"csrf_token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given
// instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL returns the remaining lifetime at the given instant, or zero when
// already expired.
func (s Session) TTL(now time.Time) time.Duration {
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// valid rejects records missing the fields every consumer depends on.
// Records failing this check are treated the same as undecodable ones.
func (s Session) valid() bool {
	return s.UserID != "" && !s.ExpiresAt.IsZero()
}
