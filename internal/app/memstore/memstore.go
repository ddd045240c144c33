/*
Package memstore is an in-process implementation of the room and user stores.

Transactions are serialized by a single mutex and run against a copy of the
data, which replaces the live data only when the transaction function succeeds.
It backs STORE_DRIVER=memory and the service tests.
*/
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"roomchat/internal/app/room"
	"roomchat/internal/app/user"
)

type memberKey struct {
	roomID string
	userID string
}

type data struct {
	rooms   map[string]room.Room
	members map[memberKey]room.Membership
	users   map[string]user.User
}

func (d *data) clone() *data {
	c := &data{
		rooms:   make(map[string]room.Room, len(d.rooms)),
		members: make(map[memberKey]room.Membership, len(d.members)),
		users:   d.users,
	}
	for k, v := range d.rooms {
		c.rooms[k] = v
	}
	for k, v := range d.members {
		c.members[k] = v
	}
	return c
}

// Store holds rooms, memberships and users in memory.
type Store struct {
	mu   sync.Mutex
	data *data
	now  func() time.Time
}

var (
	_ room.Store = (*Store)(nil)
	_ user.Store = (*Store)(nil)
)

// New creates an empty Store.
func New() *Store {
	return &Store{
		data: &data{
			rooms:   make(map[string]room.Room),
			members: make(map[memberKey]room.Membership),
			users:   make(map[string]user.User),
		},
		now: time.Now,
	}
}

// InTx runs fn with exclusive access to a working copy of the rooms and memberships.
func (s *Store) InTx(ctx context.Context, fn func(tx room.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.data.clone()
	if err := fn(&tx{d: working, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.data = working
	return nil
}

// FindRoom implements room.Store.
func (s *Store) FindRoom(ctx context.Context, roomID, userID string) (*room.Room, *room.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, m := lookup(s.data, roomID, userID)
	return r, m, nil
}

// ListPublicRooms implements room.Store.
func (s *Store) ListPublicRooms(ctx context.Context, limit int) ([]room.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := make([]room.Room, 0)
	for _, r := range s.data.rooms {
		if r.Active && r.Kind == room.KindPublic {
			rooms = append(rooms, r)
		}
	}
	sortNewestFirst(rooms)

	if limit > 0 && len(rooms) > limit {
		rooms = rooms[:limit]
	}
	return rooms, nil
}

// ListJoinedRooms implements room.Store.
func (s *Store) ListJoinedRooms(ctx context.Context, userID string, kind room.Kind) ([]room.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := make([]room.Room, 0)
	for k := range s.data.members {
		if k.userID != userID {
			continue
		}
		r, ok := s.data.rooms[k.roomID]
		if ok && r.Active && r.Kind == kind {
			rooms = append(rooms, r)
		}
	}
	sortNewestFirst(rooms)
	return rooms, nil
}

// ListMembers implements room.Store.
func (s *Store) ListMembers(ctx context.Context, roomID string) ([]room.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]room.Membership, 0)
	for k, m := range s.data.members {
		if k.roomID == roomID {
			members = append(members, m)
		}
	}
	slices.SortFunc(members, func(a, b room.Membership) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	return members, nil
}

func lookup(d *data, roomID, userID string) (*room.Room, *room.Membership) {
	var (
		r *room.Room
		m *room.Membership
	)
	if found, ok := d.rooms[roomID]; ok {
		r = &found
	}
	if found, ok := d.members[memberKey{roomID, userID}]; ok {
		m = &found
	}
	return r, m
}

func sortNewestFirst(rooms []room.Room) {
	slices.SortFunc(rooms, func(a, b room.Room) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
