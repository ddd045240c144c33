package memstore

import (
	"context"
	"time"

	"roomchat/internal/app/user"
)

// CreateUser implements user.Store.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.users {
		switch {
		case existing.Username == u.Username:
			return user.ErrUsernameTaken
		case u.GoogleSubject != "" && existing.GoogleSubject == u.GoogleSubject:
			return user.ErrGoogleSubjectTaken
		case isLocal(*u) && isLocal(existing) && existing.Email == u.Email:
			return user.ErrEmailTaken
		}
	}
	s.data.users[u.ID] = *u
	return nil
}

// GetUserByID implements user.Store.
func (s *Store) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	return s.findUser(ctx, func(u user.User) bool { return u.ID == id })
}

// GetUserByUsername implements user.Store.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.findUser(ctx, func(u user.User) bool { return u.Username == username })
}

// GetLocalUserByEmail implements user.Store.
func (s *Store) GetLocalUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if email == "" {
		return nil, user.ErrNotFound
	}
	return s.findUser(ctx, func(u user.User) bool { return isLocal(u) && u.Email == email })
}

// GetUserByGoogleSubject implements user.Store.
func (s *Store) GetUserByGoogleSubject(ctx context.Context, subject string) (*user.User, error) {
	if subject == "" {
		return nil, user.ErrNotFound
	}
	return s.findUser(ctx, func(u user.User) bool { return u.GoogleSubject == subject })
}

// UpdateLastLogin implements user.Store.
func (s *Store) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.LastLoginAt = &at
	s.data.users[id] = u
	return nil
}

func (s *Store) findUser(ctx context.Context, match func(user.User) bool) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.data.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, user.ErrNotFound
}

func isLocal(u user.User) bool {
	return u.PasswordHash != ""
}
