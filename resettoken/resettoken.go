package resettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalid is returned for tokens that fail signature, shape, or
	// fingerprint checks.
	ErrInvalid = errors.New("invalid reset token")

	// ErrExpired is returned for well-formed tokens past their expiry.
	ErrExpired = errors.New("reset token expired")
)

const (
	minSecretBytes = 32
	tokenIssuer    = "pressauth"
	tokenAudience  = "password-reset"
)

// Claims are the verified contents of a reset token.
type Claims struct {
	Username    string `json:"sub"`
	Fingerprint string `json:"pwf"`
	jwt.RegisteredClaims
}

// Manager issues and verifies reset tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager. The secret must carry at least 32 bytes; the
// ttl bounds how long an issued token stays redeemable.
func NewManager(secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("reset token secret too short: %d bytes, need %d", len(secret), minSecretBytes)
	}
	if ttl <= 0 {
		return nil, errors.New("reset token ttl must be positive")
	}
	return &Manager{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue creates a token for username bound to its current password hash.
func (m *Manager) Issue(username, passwordHash string) (string, error) {
	if username == "" || passwordHash == "" {
		return "", errors.New("username and password hash required")
	}

	now := m.now()
	claims := Claims{
		Username:    username,
		Fingerprint: fingerprint(passwordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks the token against the account's current password hash and
// returns its claims. A token issued before the account's password last
// changed fails with [ErrInvalid].
func (m *Manager) Verify(tokenString, username, currentPasswordHash string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalid
	}

	if subtleCompare(claims.Username, username) != 1 {
		return Claims{}, ErrInvalid
	}
	if subtleCompare(claims.Fingerprint, fingerprint(currentPasswordHash)) != 1 {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}

// fingerprint derives a stable, non-reversible marker for a password hash.
func fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:16])
}

func subtleCompare(a, b string) int {
	if hmac.Equal([]byte(a), []byte(b)) {
		return 1
	}
	return 0
}
