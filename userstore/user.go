package userstore

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a username resolves to no account.
	ErrNotFound = errors.New("user not found")

	// ErrExists is returned when creating a username that is already taken.
	ErrExists = errors.New("user already exists")
)

// User is one account record. Optional fields are pointers so absence
// serializes as null.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`

	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`

	Active bool `json:"is_active"`
}

func (u User) valid() bool {
	return u.Username != "" && u.PasswordHash != ""
}
