package room

import (
	"context"
	"errors"
)

var (
	// ErrMembershipExists is returned by Tx.InsertMembership on a duplicate (room, user) pair.
	ErrMembershipExists = errors.New("room: membership already exists")

	// ErrUnknownUsers is returned by Tx.InsertGuests when a target user id does not exist.
	ErrUnknownUsers = errors.New("room: unknown users")

	// ErrTransient marks store contention (serialization failure, deadlock, lock timeout).
	// Implementations wrap it so errors.Is identifies retryable failures.
	ErrTransient = errors.New("room: transient store failure")
)

// LockMode selects how Tx.Lock holds the room row.
type LockMode int

const (
	// LockShare blocks concurrent room mutation but not other sharers.
	LockShare LockMode = iota

	// LockExclusive is taken by operations that change the room row itself.
	LockExclusive
)

// Store is the persistence contract for rooms and memberships.
type Store interface {
	// InTx runs fn inside one transaction. If fn returns an error the transaction
	// is rolled back and that error is returned unchanged.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// FindRoom loads a room and userID's membership of it without locks.
	// Either result may be nil.
	FindRoom(ctx context.Context, roomID, userID string) (*Room, *Membership, error)

	// ListPublicRooms returns active public rooms, newest first.
	ListPublicRooms(ctx context.Context, limit int) ([]Room, error)

	// ListJoinedRooms returns active rooms of kind where userID holds a membership.
	ListJoinedRooms(ctx context.Context, userID string, kind Kind) ([]Room, error)

	// ListMembers returns the memberships of a room ordered by creation.
	ListMembers(ctx context.Context, roomID string) ([]Membership, error)
}

// Tx is the set of reads and writes available inside Store.InTx.
type Tx interface {
	// Lock loads the room and userID's membership, holding the room row in mode and
	// the membership row exclusively until the transaction ends. Both lookups are
	// always performed, and either result may be nil.
	Lock(ctx context.Context, roomID, userID string, mode LockMode) (*Room, *Membership, error)

	// InsertRoom persists a new room.
	InsertRoom(ctx context.Context, r *Room) error

	// InsertMembership persists a new membership or fails with ErrMembershipExists.
	InsertMembership(ctx context.Context, m *Membership) error

	// InsertGuests adds a Guest membership for every user id that lacks one and
	// returns how many were created. Existing memberships are left untouched.
	InsertGuests(ctx context.Context, roomID string, userIDs []string) (int, error)

	// UpdateRoomName sets the room's name.
	UpdateRoomName(ctx context.Context, roomID, name string) error

	// DeactivateRoom sets the room's active flag to false.
	DeactivateRoom(ctx context.Context, roomID string) error

	// EnterRoom marks userID as entered, creating a Guest membership when none exists.
	// It reports whether the membership was created.
	EnterRoom(ctx context.Context, roomID, userID string) (Membership, bool, error)

	// SetEntered updates the entered flag of an existing membership.
	SetEntered(ctx context.Context, roomID, userID string, entered bool) (Membership, error)
}
