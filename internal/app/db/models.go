package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// UserRow mirrors the users table.
type UserRow struct {
	ID           string
	Username     string
	Email        pgtype.Text
	PasswordHash pgtype.Text
	GoogleSub    pgtype.Text
	CreatedAt    pgtype.Timestamptz
	LastLoginAt  pgtype.Timestamptz
}

// RoomRow mirrors the rooms table.
type RoomRow struct {
	ID         string
	Name       string
	Kind       string
	CreatorID  string
	Active     bool
	SecretHash pgtype.Text
	CreatedAt  pgtype.Timestamptz
}

// MembershipRow mirrors the room_memberships table.
type MembershipRow struct {
	RoomID    string
	UserID    string
	Role      string
	Entered   bool
	CreatedAt pgtype.Timestamptz
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
