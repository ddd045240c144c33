package memstore

import (
	"context"
	"fmt"
	"time"

	"roomchat/internal/app/room"
)

// tx works on a private copy, so the row locks the room.Tx contract asks for
// are already provided by the Store mutex.
type tx struct {
	d   *data
	now func() time.Time
}

func (t *tx) Lock(ctx context.Context, roomID, userID string, _ room.LockMode) (*room.Room, *room.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	r, m := lookup(t.d, roomID, userID)
	return r, m, nil
}

func (t *tx) InsertRoom(ctx context.Context, r *room.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.d.rooms[r.ID]; ok {
		return fmt.Errorf("memstore: room %s already exists", r.ID)
	}
	t.d.rooms[r.ID] = *r
	return nil
}

func (t *tx) InsertMembership(ctx context.Context, m *room.Membership) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.d.rooms[m.RoomID]; !ok {
		return fmt.Errorf("memstore: room %s does not exist", m.RoomID)
	}
	key := memberKey{m.RoomID, m.UserID}
	if _, ok := t.d.members[key]; ok {
		return room.ErrMembershipExists
	}
	t.d.members[key] = *m
	return nil
}

func (t *tx) InsertGuests(ctx context.Context, roomID string, userIDs []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for _, id := range userIDs {
		if _, ok := t.d.users[id]; !ok {
			return 0, fmt.Errorf("%w: %s", room.ErrUnknownUsers, id)
		}
	}

	now := t.now().UTC()
	created := 0
	for _, id := range userIDs {
		key := memberKey{roomID, id}
		if _, ok := t.d.members[key]; ok {
			continue
		}
		t.d.members[key] = room.Membership{
			RoomID:    roomID,
			UserID:    id,
			Role:      room.RoleGuest,
			CreatedAt: now,
		}
		created++
	}
	return created, nil
}

func (t *tx) UpdateRoomName(ctx context.Context, roomID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, ok := t.d.rooms[roomID]
	if !ok {
		return fmt.Errorf("memstore: room %s does not exist", roomID)
	}
	r.Name = name
	t.d.rooms[roomID] = r
	return nil
}

func (t *tx) DeactivateRoom(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, ok := t.d.rooms[roomID]
	if !ok {
		return fmt.Errorf("memstore: room %s does not exist", roomID)
	}
	r.Active = false
	t.d.rooms[roomID] = r
	return nil
}

func (t *tx) EnterRoom(ctx context.Context, roomID, userID string) (room.Membership, bool, error) {
	if err := ctx.Err(); err != nil {
		return room.Membership{}, false, err
	}
	key := memberKey{roomID, userID}
	m, ok := t.d.members[key]
	if !ok {
		m = room.Membership{
			RoomID:    roomID,
			UserID:    userID,
			Role:      room.RoleGuest,
			CreatedAt: t.now().UTC(),
		}
	}
	m.Entered = true
	t.d.members[key] = m
	return m, !ok, nil
}

func (t *tx) SetEntered(ctx context.Context, roomID, userID string, entered bool) (room.Membership, error) {
	if err := ctx.Err(); err != nil {
		return room.Membership{}, err
	}
	key := memberKey{roomID, userID}
	m, ok := t.d.members[key]
	if !ok {
		return room.Membership{}, fmt.Errorf("memstore: no membership for %s in %s", userID, roomID)
	}
	m.Entered = entered
	t.d.members[key] = m
	return m, nil
}
