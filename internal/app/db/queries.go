package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries holds the SQL used by the stores.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const userColumns = `id::text, username, email, password_hash, google_sub, created_at, last_login_at`

func scanUser(row pgx.Row) (UserRow, error) {
	var u UserRow
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GoogleSub, &u.CreatedAt, &u.LastLoginAt)
	return u, err
}

const createUser = `INSERT INTO users (id, username, email, password_hash, google_sub, created_at, last_login_at)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`

func (q *Queries) CreateUser(ctx context.Context, u UserRow) error {
	_, err := q.db.Exec(ctx, createUser, u.ID, u.Username, u.Email, u.PasswordHash, u.GoogleSub, u.CreatedAt, u.LastLoginAt)
	return err
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (UserRow, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id))
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (UserRow, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (q *Queries) GetLocalUserByEmail(ctx context.Context, email string) (UserRow, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND password_hash IS NOT NULL`, email))
}

func (q *Queries) GetUserByGoogleSub(ctx context.Context, sub string) (UserRow, error) {
	return scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE google_sub = $1`, sub))
}

func (q *Queries) UpdateLastLogin(ctx context.Context, id string, at time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1::uuid`, id, at)
	return tag.RowsAffected(), err
}

func (q *Queries) CountUsers(ctx context.Context, ids []string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `SELECT count(*) FROM users WHERE id = ANY($1::text[]::uuid[])`, ids).Scan(&n)
	return n, err
}

const roomColumns = `id::text, name, kind, creator_id::text, active, secret_hash, created_at`

func scanRoom(row pgx.Row) (RoomRow, error) {
	var r RoomRow
	err := row.Scan(&r.ID, &r.Name, &r.Kind, &r.CreatorID, &r.Active, &r.SecretHash, &r.CreatedAt)
	return r, err
}

func scanRooms(rows pgx.Rows) ([]RoomRow, error) {
	defer rows.Close()

	items := []RoomRow{}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const membershipColumns = `room_id::text, user_id::text, role, entered, created_at`

func scanMembership(row pgx.Row) (MembershipRow, error) {
	var m MembershipRow
	err := row.Scan(&m.RoomID, &m.UserID, &m.Role, &m.Entered, &m.CreatedAt)
	return m, err
}

func (q *Queries) GetRoom(ctx context.Context, id string) (RoomRow, error) {
	return scanRoom(q.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1::uuid`, id))
}

// GetRoomForShare and GetRoomForUpdate are separate statements because row
// locks cannot apply to the nullable side of an outer join.
func (q *Queries) GetRoomForShare(ctx context.Context, id string) (RoomRow, error) {
	return scanRoom(q.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1::uuid FOR SHARE`, id))
}

func (q *Queries) GetRoomForUpdate(ctx context.Context, id string) (RoomRow, error) {
	return scanRoom(q.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1::uuid FOR UPDATE`, id))
}

func (q *Queries) GetMembership(ctx context.Context, roomID, userID string) (MembershipRow, error) {
	return scanMembership(q.db.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM room_memberships WHERE room_id = $1::uuid AND user_id = $2::uuid`,
		roomID, userID))
}

func (q *Queries) GetMembershipForUpdate(ctx context.Context, roomID, userID string) (MembershipRow, error) {
	return scanMembership(q.db.QueryRow(ctx,
		`SELECT `+membershipColumns+` FROM room_memberships WHERE room_id = $1::uuid AND user_id = $2::uuid FOR UPDATE`,
		roomID, userID))
}

const insertRoom = `INSERT INTO rooms (id, name, kind, creator_id, active, secret_hash, created_at)
VALUES ($1::uuid, $2, $3, $4::uuid, $5, $6, $7)`

func (q *Queries) InsertRoom(ctx context.Context, r RoomRow) error {
	_, err := q.db.Exec(ctx, insertRoom, r.ID, r.Name, r.Kind, r.CreatorID, r.Active, r.SecretHash, r.CreatedAt)
	return err
}

const insertMembership = `INSERT INTO room_memberships (room_id, user_id, role, entered, created_at)
VALUES ($1::uuid, $2::uuid, $3, $4, $5)`

func (q *Queries) InsertMembership(ctx context.Context, m MembershipRow) error {
	_, err := q.db.Exec(ctx, insertMembership, m.RoomID, m.UserID, m.Role, m.Entered, m.CreatedAt)
	return err
}

const insertGuests = `INSERT INTO room_memberships (room_id, user_id, role, entered, created_at)
SELECT $1::uuid, u::uuid, 'guest', FALSE, $3
FROM unnest($2::text[]) AS u
ON CONFLICT (room_id, user_id) DO NOTHING`

func (q *Queries) InsertGuests(ctx context.Context, roomID string, userIDs []string, at time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, insertGuests, roomID, userIDs, at)
	return tag.RowsAffected(), err
}

func (q *Queries) UpdateRoomName(ctx context.Context, id, name string) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE rooms SET name = $2 WHERE id = $1::uuid`, id, name)
	return tag.RowsAffected(), err
}

func (q *Queries) DeactivateRoom(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, `UPDATE rooms SET active = FALSE WHERE id = $1::uuid`, id)
	return tag.RowsAffected(), err
}

// enterRoom upserts an entered membership. xmax is zero only on freshly inserted rows.
const enterRoom = `INSERT INTO room_memberships (room_id, user_id, role, entered, created_at)
VALUES ($1::uuid, $2::uuid, 'guest', TRUE, $3)
ON CONFLICT (room_id, user_id) DO UPDATE SET entered = TRUE
RETURNING ` + membershipColumns + `, (xmax = 0) AS created`

func (q *Queries) EnterRoom(ctx context.Context, roomID, userID string, at time.Time) (MembershipRow, bool, error) {
	var (
		m       MembershipRow
		created bool
	)
	err := q.db.QueryRow(ctx, enterRoom, roomID, userID, at).
		Scan(&m.RoomID, &m.UserID, &m.Role, &m.Entered, &m.CreatedAt, &created)
	return m, created, err
}

const setEntered = `UPDATE room_memberships SET entered = $3
WHERE room_id = $1::uuid AND user_id = $2::uuid
RETURNING ` + membershipColumns

func (q *Queries) SetEntered(ctx context.Context, roomID, userID string, entered bool) (MembershipRow, error) {
	return scanMembership(q.db.QueryRow(ctx, setEntered, roomID, userID, entered))
}

func (q *Queries) ListPublicRooms(ctx context.Context, limit int) ([]RoomRow, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE active AND kind = 'public' ORDER BY created_at DESC, id LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

const listJoinedRooms = `SELECT r.id::text, r.name, r.kind, r.creator_id::text, r.active, r.secret_hash, r.created_at
FROM rooms r
JOIN room_memberships m ON m.room_id = r.id
WHERE m.user_id = $1::uuid AND r.active AND r.kind = $2
ORDER BY r.created_at DESC, r.id`

func (q *Queries) ListJoinedRooms(ctx context.Context, userID, kind string) ([]RoomRow, error) {
	rows, err := q.db.Query(ctx, listJoinedRooms, userID, kind)
	if err != nil {
		return nil, err
	}
	return scanRooms(rows)
}

func (q *Queries) ListMembers(ctx context.Context, roomID string) ([]MembershipRow, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+membershipColumns+` FROM room_memberships WHERE room_id = $1::uuid ORDER BY created_at, user_id`,
		roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []MembershipRow{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
