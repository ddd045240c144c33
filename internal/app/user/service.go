package user

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

const (
	// MaxUsernameLength is the maximum username length in characters.
	MaxUsernameLength = 150

	minPasswordLength = 6
	maxPasswordLength = 72

	// maxUsernameAttempts bounds the sequential-suffix search for Google sign-ups.
	maxUsernameAttempts = 200
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// unsafeUsernameChars strips what usernameRegex rejects from derived names.
var unsafeUsernameChars = regexp.MustCompile(`[^\w.@+-]`)

// dummyPasswordHash keeps sign-in for unknown usernames as slow as a real mismatch.
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("roomchat-dummy-password"), bcrypt.DefaultCost)

// Service implements account registration and sign-in.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a Service.
func NewService(store Store) *Service {
	if store == nil {
		panic("user store cannot be nil for Service")
	}
	return &Service{store: store, now: time.Now}
}

// RegisterInput carries a local sign-up request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a local account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	username := strings.TrimSpace(in.Username)
	if !usernameRegex.MatchString(username) {
		return nil, errs.NewError(errs.ErrInvalidUsername)
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, errs.NewError(errs.ErrInvalidEmail)
	}

	n := utf8.RuneCountInString(in.Password)
	if n < minPasswordLength || len(in.Password) > maxPasswordLength {
		return nil, errs.NewError(errs.ErrInvalidPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Wrap(errs.ErrUnknown, err)
	}

	now := s.now().UTC()
	u := &User{
		ID:           randx.ID(),
		Username:     username,
		Email:        strings.ToLower(addr.Address),
		PasswordHash: string(hash),
		CreatedAt:    now,
		LastLoginAt:  &now,
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			logx.Warn("registration conflict: username already exists", "username", username)
			return nil, errs.NewError(errs.ErrUserAlreadyExists)
		}
		if errors.Is(err, ErrEmailTaken) {
			logx.Warn("registration conflict: email already in use", "username", username)
			return nil, errs.NewError(errs.ErrEmailAlreadyExists)
		}
		logx.Error(err, "failed to create user")
		return nil, errs.Wrap(errs.ErrUnknown, err)
	}

	return u, nil
}

// Authenticate verifies local credentials given a username.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	u, err := s.store.GetUserByUsername(ctx, username)
	return s.checkPassword(ctx, u, err, password, "username", username)
}

// AuthenticateByEmail verifies local credentials given the account's e-mail address.
func (s *Service) AuthenticateByEmail(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.store.GetLocalUserByEmail(ctx, email)
	return s.checkPassword(ctx, u, err, password, "email", email)
}

// checkPassword runs one bcrypt comparison whether or not the lookup found an account.
func (s *Service) checkPassword(ctx context.Context, u *User, lookupErr error, password, key, value string) (*User, error) {
	if lookupErr != nil && !errors.Is(lookupErr, ErrNotFound) {
		logx.Error(lookupErr, "login: user fetch failed", key, value)
		return nil, errs.Wrap(errs.ErrUnknown, lookupErr)
	}

	hash := dummyPasswordHash
	if u != nil && u.PasswordHash != "" {
		hash = []byte(u.PasswordHash)
	}

	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password)); cmpErr != nil || u == nil || u.PasswordHash == "" {
		logx.Warn("login: invalid credentials", key, value)
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}

	s.touchLastLogin(ctx, u)
	return u, nil
}

// SignInWithGoogle returns the account bound to a Google subject, creating it on
// first sign-in. The username is derived from the e-mail local part and gets a
// numeric suffix when already taken.
func (s *Service) SignInWithGoogle(ctx context.Context, subject, email string) (*User, error) {
	existing, err := s.store.GetUserByGoogleSubject(ctx, subject)
	if err == nil {
		s.touchLastLogin(ctx, existing)
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		logx.Error(err, "google sign-in: user fetch failed")
		return nil, errs.Wrap(errs.ErrUnknown, err)
	}

	base := usernameFromEmail(email)
	now := s.now().UTC()

	for i := 0; i < maxUsernameAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = withSuffix(base, i)
		}

		u := &User{
			ID:            randx.ID(),
			Username:      candidate,
			Email:         strings.ToLower(email),
			GoogleSubject: subject,
			CreatedAt:     now,
			LastLoginAt:   &now,
		}

		err := s.store.CreateUser(ctx, u)
		if err == nil {
			logx.Info("google sign-in: account created", "user_id", u.ID, "attempts", i+1)
			return u, nil
		}
		if errors.Is(err, ErrGoogleSubjectTaken) {
			// A concurrent first sign-in for the same subject won.
			return s.existingGoogleUser(ctx, subject)
		}
		if !errors.Is(err, ErrUsernameTaken) {
			logx.Error(err, "google sign-in: failed to create user")
			return nil, errs.Wrap(errs.ErrUnknown, err)
		}
	}

	logx.Warn("google sign-in: username suffixes exhausted", "base", base)
	return nil, errs.NewError(errs.ErrUserAlreadyExists)
}

func (s *Service) existingGoogleUser(ctx context.Context, subject string) (*User, error) {
	u, err := s.store.GetUserByGoogleSubject(ctx, subject)
	if err != nil {
		logx.Error(err, "google sign-in: re-read after conflict failed")
		return nil, errs.Wrap(errs.ErrUnknown, err)
	}
	s.touchLastLogin(ctx, u)
	return u, nil
}

// FindByUsername looks up an account by its public handle, so clients can
// resolve the ids that room invitations take.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrUnknown, err)
	}
	return u, nil
}

// Profile returns the account with the given id.
func (s *Service) Profile(ctx context.Context, id string) (*User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, errs.NewError(errs.ErrUserNotFound)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrUnknown, err)
	}
	return u, nil
}

func (s *Service) touchLastLogin(ctx context.Context, u *User) {
	now := s.now().UTC()
	if err := s.store.UpdateLastLogin(ctx, u.ID, now); err != nil {
		logx.Error(err, "failed to update last_login_at", "user_id", u.ID)
		return
	}
	u.LastLoginAt = &now
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	name := unsafeUsernameChars.ReplaceAllString(local, "")
	if name == "" {
		name = "user"
	}
	if utf8.RuneCountInString(name) > MaxUsernameLength {
		name = string([]rune(name)[:MaxUsernameLength])
	}
	return name
}

// withSuffix appends i to base, trimming base so the result stays within MaxUsernameLength.
func withSuffix(base string, i int) string {
	suffix := strconv.Itoa(i)
	runes := []rune(base)
	if keep := MaxUsernameLength - len(suffix); len(runes) > keep {
		runes = runes[:keep]
	}
	return string(runes) + suffix
}
