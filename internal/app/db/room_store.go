package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomchat/internal/app/room"
)

// lockTimeout bounds how long a transaction waits for a row lock before failing with 55P03.
const lockTimeout = "3s"

// RoomStore implements room.Store on PostgreSQL.
type RoomStore struct {
	pool *pgxpool.Pool
	q    *Queries
	now  func() time.Time
}

var _ room.Store = (*RoomStore)(nil)

// NewRoomStore creates a RoomStore.
func NewRoomStore(pool *pgxpool.Pool) *RoomStore {
	return &RoomStore{pool: pool, q: New(pool), now: time.Now}
}

// InTx implements room.Store.
func (s *RoomStore) InTx(ctx context.Context, fn func(tx room.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if _, err := tx.Exec(ctx, "SET LOCAL lock_timeout = '"+lockTimeout+"'"); err != nil {
		return classify(fmt.Errorf("set lock_timeout: %w", err))
	}

	if err := fn(&roomTx{q: s.q.WithTx(tx), now: s.now}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit: %w", err))
	}
	return nil
}

// FindRoom implements room.Store.
func (s *RoomStore) FindRoom(ctx context.Context, roomID, userID string) (*room.Room, *room.Membership, error) {
	r, err := optional(s.q.GetRoom(ctx, roomID))
	if err != nil {
		return nil, nil, classify(fmt.Errorf("get room: %w", err))
	}
	m, err := optional(s.q.GetMembership(ctx, roomID, userID))
	if err != nil {
		return nil, nil, classify(fmt.Errorf("get membership: %w", err))
	}
	return toRoom(r), toMembership(m), nil
}

// ListPublicRooms implements room.Store.
func (s *RoomStore) ListPublicRooms(ctx context.Context, limit int) ([]room.Room, error) {
	rows, err := s.q.ListPublicRooms(ctx, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("list public rooms: %w", err))
	}
	return toRooms(rows), nil
}

// ListJoinedRooms implements room.Store.
func (s *RoomStore) ListJoinedRooms(ctx context.Context, userID string, kind room.Kind) ([]room.Room, error) {
	rows, err := s.q.ListJoinedRooms(ctx, userID, string(kind))
	if err != nil {
		return nil, classify(fmt.Errorf("list joined rooms: %w", err))
	}
	return toRooms(rows), nil
}

// ListMembers implements room.Store.
func (s *RoomStore) ListMembers(ctx context.Context, roomID string) ([]room.Membership, error) {
	rows, err := s.q.ListMembers(ctx, roomID)
	if err != nil {
		return nil, classify(fmt.Errorf("list members: %w", err))
	}

	members := make([]room.Membership, 0, len(rows))
	for _, row := range rows {
		members = append(members, *toMembership(&row))
	}
	return members, nil
}

type roomTx struct {
	q   *Queries
	now func() time.Time
}

func (t *roomTx) Lock(ctx context.Context, roomID, userID string, mode room.LockMode) (*room.Room, *room.Membership, error) {
	get := t.q.GetRoomForShare
	if mode == room.LockExclusive {
		get = t.q.GetRoomForUpdate
	}

	r, err := optional(get(ctx, roomID))
	if err != nil {
		return nil, nil, classify(fmt.Errorf("lock room: %w", err))
	}
	m, err := optional(t.q.GetMembershipForUpdate(ctx, roomID, userID))
	if err != nil {
		return nil, nil, classify(fmt.Errorf("lock membership: %w", err))
	}
	return toRoom(r), toMembership(m), nil
}

func (t *roomTx) InsertRoom(ctx context.Context, r *room.Room) error {
	err := t.q.InsertRoom(ctx, RoomRow{
		ID:         r.ID,
		Name:       r.Name,
		Kind:       string(r.Kind),
		CreatorID:  r.CreatorID,
		Active:     r.Active,
		SecretHash: text(r.SecretHash),
		CreatedAt:  timestamptz(r.CreatedAt),
	})
	if err != nil {
		return classify(fmt.Errorf("insert room: %w", err))
	}
	return nil
}

func (t *roomTx) InsertMembership(ctx context.Context, m *room.Membership) error {
	err := t.q.InsertMembership(ctx, MembershipRow{
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		Entered:   m.Entered,
		CreatedAt: timestamptz(m.CreatedAt),
	})
	if IsUniqueViolation(err) {
		return room.ErrMembershipExists
	}
	if err != nil {
		return classify(fmt.Errorf("insert membership: %w", err))
	}
	return nil
}

func (t *roomTx) InsertGuests(ctx context.Context, roomID string, userIDs []string) (int, error) {
	known, err := t.q.CountUsers(ctx, userIDs)
	if err != nil {
		return 0, classify(fmt.Errorf("count users: %w", err))
	}
	if known != len(userIDs) {
		return 0, room.ErrUnknownUsers
	}

	n, err := t.q.InsertGuests(ctx, roomID, userIDs, t.now().UTC())
	if IsForeignKeyViolation(err) {
		return 0, room.ErrUnknownUsers
	}
	if err != nil {
		return 0, classify(fmt.Errorf("insert guests: %w", err))
	}
	return int(n), nil
}

func (t *roomTx) UpdateRoomName(ctx context.Context, roomID, name string) error {
	if _, err := t.q.UpdateRoomName(ctx, roomID, name); err != nil {
		return classify(fmt.Errorf("update room name: %w", err))
	}
	return nil
}

func (t *roomTx) DeactivateRoom(ctx context.Context, roomID string) error {
	if _, err := t.q.DeactivateRoom(ctx, roomID); err != nil {
		return classify(fmt.Errorf("deactivate room: %w", err))
	}
	return nil
}

func (t *roomTx) EnterRoom(ctx context.Context, roomID, userID string) (room.Membership, bool, error) {
	row, created, err := t.q.EnterRoom(ctx, roomID, userID, t.now().UTC())
	if err != nil {
		return room.Membership{}, false, classify(fmt.Errorf("enter room: %w", err))
	}
	return *toMembership(&row), created, nil
}

func (t *roomTx) SetEntered(ctx context.Context, roomID, userID string, entered bool) (room.Membership, error) {
	row, err := t.q.SetEntered(ctx, roomID, userID, entered)
	if err != nil {
		return room.Membership{}, classify(fmt.Errorf("set entered: %w", err))
	}
	return *toMembership(&row), nil
}

// optional turns pgx.ErrNoRows into a nil result.
func optional[T any](row T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// classify tags contention failures with room.ErrTransient.
func classify(err error) error {
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", room.ErrTransient, err)
	}
	return err
}

func toRoom(r *RoomRow) *room.Room {
	if r == nil {
		return nil
	}
	return &room.Room{
		ID:         r.ID,
		Name:       r.Name,
		Kind:       room.Kind(r.Kind),
		CreatorID:  r.CreatorID,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt.Time,
		SecretHash: r.SecretHash.String,
	}
}

func toRooms(rows []RoomRow) []room.Room {
	rooms := make([]room.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, *toRoom(&row))
	}
	return rooms
}

func toMembership(m *MembershipRow) *room.Membership {
	if m == nil {
		return nil
	}
	return &room.Membership{
		RoomID:    m.RoomID,
		UserID:    m.UserID,
		Role:      room.Role(m.Role),
		Entered:   m.Entered,
		CreatedAt: m.CreatedAt.Time,
	}
}
