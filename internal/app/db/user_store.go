package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"roomchat/internal/app/user"
)

const (
	usernameConstraint   = "users_username_key"
	googleSubConstraint  = "users_google_sub_key"
	localEmailConstraint = "users_local_email_key"
)

// UserStore implements user.Store on PostgreSQL.
type UserStore struct {
	q *Queries
}

var _ user.Store = (*UserStore)(nil)

// NewUserStore creates a UserStore.
func NewUserStore(db DBTX) *UserStore {
	return &UserStore{q: New(db)}
}

// CreateUser implements user.Store.
func (s *UserStore) CreateUser(ctx context.Context, u *user.User) error {
	row := UserRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        text(u.Email),
		PasswordHash: text(u.PasswordHash),
		GoogleSub:    text(u.GoogleSubject),
		CreatedAt:    timestamptz(u.CreatedAt),
	}
	if u.LastLoginAt != nil {
		row.LastLoginAt = timestamptz(*u.LastLoginAt)
	}

	err := s.q.CreateUser(ctx, row)
	switch {
	case IsConstraintViolation(err, usernameConstraint):
		return user.ErrUsernameTaken
	case IsConstraintViolation(err, googleSubConstraint):
		return user.ErrGoogleSubjectTaken
	case IsConstraintViolation(err, localEmailConstraint):
		return user.ErrEmailTaken
	case err != nil:
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByID implements user.Store.
func (s *UserStore) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	return toUser(s.q.GetUserByID(ctx, id))
}

// GetUserByUsername implements user.Store.
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return toUser(s.q.GetUserByUsername(ctx, username))
}

// GetLocalUserByEmail implements user.Store.
func (s *UserStore) GetLocalUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if email == "" {
		return nil, user.ErrNotFound
	}
	return toUser(s.q.GetLocalUserByEmail(ctx, email))
}

// GetUserByGoogleSubject implements user.Store.
func (s *UserStore) GetUserByGoogleSubject(ctx context.Context, subject string) (*user.User, error) {
	if subject == "" {
		return nil, user.ErrNotFound
	}
	return toUser(s.q.GetUserByGoogleSub(ctx, subject))
}

// UpdateLastLogin implements user.Store.
func (s *UserStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	n, err := s.q.UpdateLastLogin(ctx, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func toUser(row UserRow, err error) (*user.User, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u := &user.User{
		ID:            row.ID,
		Username:      row.Username,
		Email:         row.Email.String,
		PasswordHash:  row.PasswordHash.String,
		GoogleSubject: row.GoogleSub.String,
		CreatedAt:     row.CreatedAt.Time,
	}
	if row.LastLoginAt.Valid {
		t := row.LastLoginAt.Time
		u.LastLoginAt = &t
	}
	return u, nil
}
