/*
Package room implements chatroom membership and authorization.

It holds the room and membership model, the authorization rules that decide who may
rename, disable, invite into, enter, or exit a room, and the Service that runs each
operation as one store transaction. Private rooms never reveal their existence to
non-members: every denial a non-member can trigger on a private room is the same
ErrRoomNotFound a nonexistent room id produces.
*/
package room

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Kind discriminates public rooms from private ones.
type Kind string

const (
	KindPublic  Kind = "public"
	KindPrivate Kind = "private"
)

// ParseKind converts a client-supplied kind string.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPublic:
		return KindPublic, true
	case KindPrivate:
		return KindPrivate, true
	}
	return "", false
}

// Role is a member's standing in a room. Guest is the only role without mutation rights.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleManager Role = "manager"
	RoleOwner   Role = "owner"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleManager, RoleOwner:
		return true
	}
	return false
}

const (
	// MaxNameLength is the maximum room name length in characters.
	MaxNameLength = 100

	// MinSecretLength and MaxSecretLength bound a private room's access secret.
	// bcrypt ignores input beyond 72 bytes.
	MinSecretLength = 4
	MaxSecretLength = 72
)

// Room is a chatroom record. CreatorID never changes after creation and Active
// only ever moves from true to false.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	CreatorID string    `json:"creatorId"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`

	// SecretHash is the bcrypt hash of a private room's access secret, empty when none.
	SecretHash string `json:"-"`
}

// HasSecret reports whether the room can be joined with a password.
func (r Room) HasSecret() bool {
	return r.SecretHash != ""
}

// IsPrivate reports whether the room is private.
func (r Room) IsPrivate() bool {
	return r.Kind == KindPrivate
}

// Membership links a user to a room. Entered tracks live presence and is independent of Role.
type Membership struct {
	RoomID    string    `json:"roomId"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	Entered   bool      `json:"entered"`
	CreatedAt time.Time `json:"createdAt"`
}

// normalizeName trims name and checks its length.
func normalizeName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n > 0 && n <= MaxNameLength
}
