/*
Package user contains account data and the sign-up / sign-in logic.

Accounts are created either with local credentials or from a verified Google
identity. Either way, the account's ID is the stable identifier every room
membership refers to.
*/
package user

import (
	"context"
	"errors"
	"time"
)

// User is a registered account.
type User struct {
	// ID is the unique identifier for the user (UUID).
	ID string `json:"id"`

	// Username is the unique public handle.
	Username string `json:"username"`

	// Email is shown only to the account owner.
	Email string `json:"email,omitempty"`

	// PasswordHash is the bcrypt hash for local accounts, empty for Google accounts.
	PasswordHash string `json:"-"`

	// GoogleSubject is the Google account id for Google accounts.
	GoogleSubject string `json:"-"`

	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// Provider reports how the account signs in.
func (u User) Provider() string {
	if u.GoogleSubject != "" {
		return "google"
	}
	return "local"
}

var (
	// ErrNotFound is returned by Store lookups that match no account.
	ErrNotFound = errors.New("user: not found")

	// ErrUsernameTaken is returned by Store.CreateUser on a duplicate username.
	ErrUsernameTaken = errors.New("user: username taken")

	// ErrEmailTaken is returned by Store.CreateUser when another local account
	// already signs in with the e-mail address.
	ErrEmailTaken = errors.New("user: email taken")

	// ErrGoogleSubjectTaken is returned by Store.CreateUser when the Google
	// subject is already bound to an account.
	ErrGoogleSubjectTaken = errors.New("user: google subject taken")
)

// Store persists accounts.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// GetLocalUserByEmail finds the password account signing in with email.
	GetLocalUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleSubject(ctx context.Context, subject string) (*User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
