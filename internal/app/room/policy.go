package room

import (
	"roomchat/internal/pkg/errs"
)

// The functions in this file are pure decisions over already-loaded state.
// They never log and never touch the store. A nil *Room means the room id did not
// resolve to an active record; a nil *Membership means the caller holds none.

// CanUpdateRoom reports whether m grants rename and invite rights.
func CanUpdateRoom(m Membership) bool {
	return m.Role != RoleGuest
}

// CanDeleteRoom reports whether m belongs to the room's creator. Role is irrelevant.
func CanDeleteRoom(m Membership, r Room) bool {
	return m.UserID == r.CreatorID
}

// errNotFound returns the single error shape shared by missing rooms and concealed private rooms.
func errNotFound() error {
	return errs.NewError(errs.ErrRoomNotFound)
}

func errForbidden() error {
	return errs.NewError(errs.ErrRoomForbidden)
}

// ResolvePrivateMembership returns the caller's membership of a private room.
// A missing membership is reported exactly like a missing room.
func ResolvePrivateMembership(r *Room, m *Membership) (Membership, error) {
	if r == nil || !r.IsPrivate() || m == nil {
		return Membership{}, errNotFound()
	}
	return *m, nil
}

// AuthorizeUpdate gates rename. Public rooms answer non-members with Forbidden;
// private rooms conceal themselves from non-members.
func AuthorizeUpdate(r *Room, m *Membership) error {
	if r == nil {
		return errNotFound()
	}

	var member Membership
	if r.IsPrivate() {
		resolved, err := ResolvePrivateMembership(r, m)
		if err != nil {
			return err
		}
		member = resolved
	} else {
		if m == nil {
			return errForbidden()
		}
		member = *m
	}

	if !CanUpdateRoom(member) {
		return errForbidden()
	}
	return nil
}

// AuthorizeInvite gates invitations. Only private rooms accept invites, so a
// public room answers like a missing one.
func AuthorizeInvite(r *Room, m *Membership) error {
	member, err := ResolvePrivateMembership(r, m)
	if err != nil {
		return err
	}

	if !CanUpdateRoom(member) {
		return errForbidden()
	}
	return nil
}

// AuthorizeDisable gates soft deletion. Any room kind answers a non-member with
// Forbidden, and only the creator passes.
func AuthorizeDisable(r *Room, m *Membership) error {
	if r == nil {
		return errNotFound()
	}
	if m == nil || !CanDeleteRoom(*m, *r) {
		return errForbidden()
	}
	return nil
}

// AuthorizeEntry gates Enter. Existing members always pass. Non-members pass on
// public rooms, and on private rooms only with a verified access secret; every
// other private-room refusal is concealed.
func AuthorizeEntry(r *Room, m *Membership, secretVerified bool) error {
	if r == nil {
		return errNotFound()
	}
	if m != nil {
		return nil
	}
	if r.IsPrivate() && !(r.HasSecret() && secretVerified) {
		return errNotFound()
	}
	return nil
}

// AuthorizeExit requires an existing membership. Exit never conceals.
func AuthorizeExit(r *Room, m *Membership) error {
	if r == nil {
		return errNotFound()
	}
	if m == nil {
		return errs.NewError(errs.ErrNotRoomMember)
	}
	return nil
}

// CanView reports whether a room is visible to the holder of m in queries.
func CanView(r *Room, m *Membership) bool {
	if r == nil || !r.Active {
		return false
	}
	return !r.IsPrivate() || m != nil
}
