package db

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
)

func TestOptional(t *testing.T) {
	got, err := optional(RoomRow{}, pgx.ErrNoRows)
	require.NoError(t, err)
	assert.Nil(t, got)

	boom := errors.New("boom")
	_, err = optional(RoomRow{}, boom)
	assert.ErrorIs(t, err, boom)

	got, err = optional(RoomRow{ID: "r1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
}

func TestClassify(t *testing.T) {
	err := classify(&pgconn.PgError{Code: "40001"})
	assert.ErrorIs(t, err, room.ErrTransient)

	plain := errors.New("syntax error")
	assert.Equal(t, plain, classify(plain))
}

func TestToRoom(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := toRoom(&RoomRow{
		ID: "r1", Name: "secret", Kind: "private", CreatorID: "u1", Active: true,
		SecretHash: pgtype.Text{String: "$2a$hash", Valid: true},
		CreatedAt:  pgtype.Timestamptz{Time: at, Valid: true},
	})

	assert.Equal(t, room.KindPrivate, r.Kind)
	assert.True(t, r.HasSecret())
	assert.Equal(t, at, r.CreatedAt)
	assert.Nil(t, toRoom(nil))
	assert.Nil(t, toMembership(nil))
}

func TestToUser(t *testing.T) {
	_, err := toUser(UserRow{}, pgx.ErrNoRows)
	assert.ErrorIs(t, err, user.ErrNotFound)

	u, err := toUser(UserRow{ID: "u1", Username: "alice", GoogleSub: text("g-1")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "google", u.Provider())
	assert.Nil(t, u.LastLoginAt)
}

func TestText(t *testing.T) {
	assert.False(t, text("").Valid)
	assert.True(t, text("x").Valid)
}
