package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
)

func seedRoom(t *testing.T, s *Store, id string, kind room.Kind, createdAt time.Time) {
	t.Helper()
	err := s.InTx(context.Background(), func(tx room.Tx) error {
		return tx.InsertRoom(context.Background(), &room.Room{
			ID: id, Name: id, Kind: kind, CreatorID: "u1", Active: true, CreatedAt: createdAt,
		})
	})
	require.NoError(t, err)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx room.Tx) error {
		require.NoError(t, tx.InsertRoom(ctx, &room.Room{ID: "r1", Kind: room.KindPublic, Active: true}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	r, _, err := s.FindRoom(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestInTx_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.InTx(ctx, func(room.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestInsertMembership_Duplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedRoom(t, s, "r1", room.KindPrivate, time.Now())

	m := &room.Membership{RoomID: "r1", UserID: "u1", Role: room.RoleOwner}
	require.NoError(t, s.InTx(ctx, func(tx room.Tx) error { return tx.InsertMembership(ctx, m) }))

	err := s.InTx(ctx, func(tx room.Tx) error { return tx.InsertMembership(ctx, m) })
	assert.ErrorIs(t, err, room.ErrMembershipExists)
}

func TestInsertGuests(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedRoom(t, s, "r1", room.KindPrivate, time.Now())
	require.NoError(t, s.CreateUser(ctx, &user.User{ID: "u2", Username: "bob"}))
	require.NoError(t, s.CreateUser(ctx, &user.User{ID: "u3", Username: "carol"}))

	var created int
	err := s.InTx(ctx, func(tx room.Tx) error {
		var err error
		created, err = tx.InsertGuests(ctx, "r1", []string{"u2", "u3"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	err = s.InTx(ctx, func(tx room.Tx) error {
		var err error
		created, err = tx.InsertGuests(ctx, "r1", []string{"u2"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	err = s.InTx(ctx, func(tx room.Tx) error {
		_, err := tx.InsertGuests(ctx, "r1", []string{"u2", "ghost"})
		return err
	})
	assert.ErrorIs(t, err, room.ErrUnknownUsers)

	members, err := s.ListMembers(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestEnterRoom_CreatesOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedRoom(t, s, "r1", room.KindPublic, time.Now())

	var created []bool
	for range 2 {
		err := s.InTx(ctx, func(tx room.Tx) error {
			m, c, err := tx.EnterRoom(ctx, "r1", "u2")
			assert.True(t, m.Entered)
			assert.Equal(t, room.RoleGuest, m.Role)
			created = append(created, c)
			return err
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []bool{true, false}, created)
}

func TestListRooms(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRoom(t, s, "old", room.KindPublic, base)
	seedRoom(t, s, "new", room.KindPublic, base.Add(time.Hour))
	seedRoom(t, s, "secret", room.KindPrivate, base)

	require.NoError(t, s.InTx(ctx, func(tx room.Tx) error {
		if err := tx.DeactivateRoom(ctx, "old"); err != nil {
			return err
		}
		_, _, err := tx.EnterRoom(ctx, "secret", "u9")
		return err
	}))

	public, err := s.ListPublicRooms(ctx, 10)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "new", public[0].ID)

	joined, err := s.ListJoinedRooms(ctx, "u9", room.KindPrivate)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "secret", joined[0].ID)
}

func TestUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &user.User{ID: "u1", Username: "alice", GoogleSubject: "g-1"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &user.User{ID: "u2", Username: "alice"}), user.ErrUsernameTaken)

	u, err := s.GetUserByGoogleSubject(ctx, "g-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.GetUserByGoogleSubject(ctx, "")
	assert.ErrorIs(t, err, user.ErrNotFound)

	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateLastLogin(ctx, "u1", at))
	u, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt)
	assert.Equal(t, at, *u.LastLoginAt)

	assert.ErrorIs(t, s.UpdateLastLogin(ctx, "nobody", at), user.ErrNotFound)
}

func TestEnterRoom_ConcurrentKeepsOneRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedRoom(t, s, "r1", room.KindPublic, time.Now())

	const n = 50
	var wg sync.WaitGroup
	for i := range 2 * n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.InTx(ctx, func(tx room.Tx) error {
				if _, _, err := tx.Lock(ctx, "r1", "u2", room.LockShare); err != nil {
					return err
				}
				if i%2 == 0 {
					_, _, err := tx.EnterRoom(ctx, "r1", "u2")
					return err
				}
				// Fails harmlessly when no Enter has committed yet.
				_, _ = tx.SetEntered(ctx, "r1", "u2", false)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	err := s.InTx(ctx, func(tx room.Tx) error {
		_, err := tx.SetEntered(ctx, "r1", "u2", false)
		return err
	})
	require.NoError(t, err)

	members, err := s.ListMembers(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, room.RoleGuest, members[0].Role)
	assert.False(t, members[0].Entered)
}

func TestUsers_Uniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &user.User{ID: "u1", Username: "g-user", GoogleSubject: "g-1", Email: "a@example.com"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &user.User{ID: "u2", Username: "other", GoogleSubject: "g-1"}), user.ErrGoogleSubjectTaken)

	// A Google account does not claim the address for local sign-in.
	require.NoError(t, s.CreateUser(ctx, &user.User{ID: "u3", Username: "alice", Email: "a@example.com", PasswordHash: "h"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &user.User{ID: "u4", Username: "alice2", Email: "a@example.com", PasswordHash: "h"}), user.ErrEmailTaken)

	u, err := s.GetLocalUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u3", u.ID)

	_, err = s.GetLocalUserByEmail(ctx, "")
	assert.ErrorIs(t, err, user.ErrNotFound)
}
