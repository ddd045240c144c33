package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"roomchat/internal/app/user"
)

// execErrDB fails every Exec with err. Nothing else is called by CreateUser.
type execErrDB struct {
	err error
}

func (d execErrDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, d.err
}

func (execErrDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	panic("unexpected Query")
}

func (execErrDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	panic("unexpected QueryRow")
}

func TestUserStore_CreateUserMapsConstraints(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{usernameConstraint, user.ErrUsernameTaken},
		{googleSubConstraint, user.ErrGoogleSubjectTaken},
		{localEmailConstraint, user.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			s := NewUserStore(execErrDB{err: &pgconn.PgError{Code: "23505", ConstraintName: tt.constraint}})
			err := s.CreateUser(context.Background(), &user.User{ID: "u1", Username: "alice"})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	s := NewUserStore(execErrDB{err: &pgconn.PgError{Code: "23514"}})
	err := s.CreateUser(context.Background(), &user.User{ID: "u1", Username: "alice"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, user.ErrUsernameTaken)
}

func TestUserStore_EmptyLookupsSkipQuery(t *testing.T) {
	s := NewUserStore(execErrDB{})

	_, err := s.GetLocalUserByEmail(context.Background(), "")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = s.GetUserByGoogleSubject(context.Background(), "")
	assert.ErrorIs(t, err, user.ErrNotFound)
}
