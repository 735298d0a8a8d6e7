package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const (
	// SessionTokenBytes is the entropy carried by a session token before
	// encoding. 32 bytes keeps tokens comfortably unguessable.
	SessionTokenBytes = 32

	// CSRFTokenBytes is the entropy carried by a per-session CSRF token.
	CSRFTokenBytes = 32
)

// NewToken returns a base64url-encoded (unpadded) string carrying byteLen
// bytes of cryptographic entropy.
func NewToken(byteLen int) (string, error) {
	if byteLen < 16 {
		return "", errors.New("token entropy below minimum")
	}

	raw := make([]byte, byteLen)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// NewSessionToken returns a fresh session token.
func NewSessionToken() (string, error) {
	return NewToken(SessionTokenBytes)
}

// NewCSRFToken returns a fresh per-session CSRF token.
func NewCSRFToken() (string, error) {
	return NewToken(CSRFTokenBytes)
}
