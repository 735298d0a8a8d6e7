package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost factor used when none is configured.
	// Cost 12 lands around 100–300ms per hash on commodity hardware.
	DefaultCost = 12

	maxPasswordBytes = 72 // bcrypt truncates beyond 72 bytes; reject instead
)

// passwordAlphabet deliberately omits ambiguous characters (0/O, 1/l/I).
const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Config holds bcrypt tuning parameters.
type Config struct {
	Cost int
}

// Bcrypt is a password hasher with a fixed cost factor.
//
// Bcrypt instances are intended to be configured during initialization and
// then treated as immutable.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a [Bcrypt] hasher. A zero cost selects [DefaultCost];
// costs outside bcrypt's supported range are rejected.
func NewBcrypt(cfg Config) (*Bcrypt, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Bcrypt{cost: cost}, nil
}

// Cost returns the configured cost factor.
func (b *Bcrypt) Cost() int {
	return b.cost
}

// Hash derives a salted bcrypt hash of password. Two calls with the same
// input produce different strings.
func (b *Bcrypt) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password empty")
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("password exceeds %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether password matches the stored hash. Malformed or
// truncated hash strings verify as false; no error is ever surfaced, so a
// corrupt credential record degrades to an ordinary failed login.
func (b *Bcrypt) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsUpgrade reports whether the stored hash was produced with a lower
// cost than currently configured.
func (b *Bcrypt) NeedsUpgrade(hash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false, err
	}

	return cost < b.cost, nil
}

// GeneratePassword returns a random password drawn from a reduced alphabet
// without visually ambiguous characters. Intended for bootstrap admin
// credentials and CLI-issued resets.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		return "", errors.New("generated password length below minimum")
	}

	var sb strings.Builder
	sb.Grow(length)

	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(passwordAlphabet[n.Int64()])
	}

	return sb.String(), nil
}

// GenerateLoginSlug returns a random URL-safe slug of the given length,
// used to hide the admin login path from scanners.
func GenerateLoginSlug(length int) (string, error) {
	if length < 8 {
		return "", errors.New("login slug length below minimum")
	}

	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	slug := base64.RawURLEncoding.EncodeToString(raw)
	return slug[:length], nil
}
