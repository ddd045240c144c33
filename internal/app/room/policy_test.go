package room

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roomchat/internal/pkg/errs"
)

func memberOf(r Room, userID string, role Role) *Membership {
	return &Membership{RoomID: r.ID, UserID: userID, Role: role}
}

func TestCanUpdateRoom(t *testing.T) {
	assert.False(t, CanUpdateRoom(Membership{Role: RoleGuest}))
	assert.True(t, CanUpdateRoom(Membership{Role: RoleManager}))
	assert.True(t, CanUpdateRoom(Membership{Role: RoleOwner}))
}

func TestCanDeleteRoom_CreatorNotRole(t *testing.T) {
	r := Room{ID: "r", CreatorID: "alice"}

	assert.True(t, CanDeleteRoom(Membership{UserID: "alice", Role: RoleGuest}, r))
	assert.False(t, CanDeleteRoom(Membership{UserID: "bob", Role: RoleManager}, r))
	assert.False(t, CanDeleteRoom(Membership{UserID: "bob", Role: RoleOwner}, r))
}

func TestAuthorizeUpdate(t *testing.T) {
	public := &Room{ID: "p", Kind: KindPublic, CreatorID: "alice", Active: true}
	private := &Room{ID: "s", Kind: KindPrivate, CreatorID: "alice", Active: true}

	tests := []struct {
		name string
		room *Room
		m    *Membership
		code int
	}{
		{"missing room", nil, nil, errs.ErrRoomNotFound},
		{"public non-member", public, nil, errs.ErrRoomForbidden},
		{"public guest", public, memberOf(*public, "bob", RoleGuest), errs.ErrRoomForbidden},
		{"public manager", public, memberOf(*public, "bob", RoleManager), 0},
		{"private non-member", private, nil, errs.ErrRoomNotFound},
		{"private guest", private, memberOf(*private, "bob", RoleGuest), errs.ErrRoomForbidden},
		{"private owner", private, memberOf(*private, "alice", RoleOwner), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeUpdate(tt.room, tt.m)
			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.code, errs.CodeOf(err))
		})
	}
}

func TestAuthorizeInvite_PublicRoomIsNotFound(t *testing.T) {
	public := &Room{ID: "p", Kind: KindPublic, CreatorID: "alice", Active: true}

	err := AuthorizeInvite(public, memberOf(*public, "alice", RoleOwner))
	assert.Equal(t, errs.ErrRoomNotFound, errs.CodeOf(err))
}

func TestAuthorizeDisable(t *testing.T) {
	for _, kind := range []Kind{KindPublic, KindPrivate} {
		r := &Room{ID: "r", Kind: kind, CreatorID: "alice", Active: true}

		assert.Equal(t, errs.ErrRoomForbidden, errs.CodeOf(AuthorizeDisable(r, nil)), kind)
		assert.Equal(t, errs.ErrRoomForbidden, errs.CodeOf(AuthorizeDisable(r, memberOf(*r, "bob", RoleManager))), kind)
		assert.NoError(t, AuthorizeDisable(r, memberOf(*r, "alice", RoleGuest)), kind)
	}
	assert.Equal(t, errs.ErrRoomNotFound, errs.CodeOf(AuthorizeDisable(nil, nil)))
}

func TestAuthorizeEntry(t *testing.T) {
	public := &Room{ID: "p", Kind: KindPublic, Active: true}
	private := &Room{ID: "s", Kind: KindPrivate, Active: true}
	locked := &Room{ID: "l", Kind: KindPrivate, Active: true, SecretHash: "$2a$10$hash"}

	assert.NoError(t, AuthorizeEntry(public, nil, false))
	assert.NoError(t, AuthorizeEntry(private, memberOf(*private, "bob", RoleGuest), false))
	assert.Equal(t, errs.ErrRoomNotFound, errs.CodeOf(AuthorizeEntry(private, nil, false)))
	assert.Equal(t, errs.ErrRoomNotFound, errs.CodeOf(AuthorizeEntry(private, nil, true)))
	assert.Equal(t, errs.ErrRoomNotFound, errs.CodeOf(AuthorizeEntry(locked, nil, false)))
	assert.NoError(t, AuthorizeEntry(locked, nil, true))
}

func TestAuthorizeExit(t *testing.T) {
	r := &Room{ID: "r", Kind: KindPrivate, Active: false}

	assert.Equal(t, errs.ErrNotRoomMember, errs.CodeOf(AuthorizeExit(r, nil)))
	assert.NoError(t, AuthorizeExit(r, memberOf(*r, "bob", RoleGuest)))
	assert.Equal(t, errs.ErrRoomNotFound, errs.CodeOf(AuthorizeExit(nil, nil)))
}

func TestCanView(t *testing.T) {
	public := &Room{Kind: KindPublic, Active: true}
	private := &Room{Kind: KindPrivate, Active: true}
	inactive := &Room{Kind: KindPublic, Active: false}

	assert.True(t, CanView(public, nil))
	assert.False(t, CanView(private, nil))
	assert.True(t, CanView(private, &Membership{}))
	assert.False(t, CanView(inactive, &Membership{}))
	assert.False(t, CanView(nil, nil))
}

func TestNormalizeName(t *testing.T) {
	name, ok := normalizeName("  general  ")
	assert.True(t, ok)
	assert.Equal(t, "general", name)

	_, ok = normalizeName("   ")
	assert.False(t, ok)

	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'é'
	}
	_, ok = normalizeName(string(long))
	assert.False(t, ok)
	_, ok = normalizeName(string(long[:MaxNameLength]))
	assert.True(t, ok)
}
