package room

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"roomchat/internal/app/identity"
	"roomchat/internal/app/presence"
	"roomchat/internal/pkg/errs"
	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

const (
	// DefaultStoreTimeout bounds a store call when the caller's context has no deadline.
	DefaultStoreTimeout = 5 * time.Second

	// DefaultListLimit caps ListPublicRooms.
	DefaultListLimit = 100

	// MaxInviteBatch caps the number of users in a single Invite.
	MaxInviteBatch = 100
)

// dummySecretHash is compared against when no real secret hash applies, so a
// supplied secret always costs one bcrypt comparison.
var dummySecretHash = mustHash("roomchat-dummy-secret")

func mustHash(s string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}

// Service runs room operations. Each mutating operation resolves the caller,
// loads and locks the relevant rows, applies the policy, and writes inside one
// store transaction.
type Service struct {
	store     Store
	resolver  identity.Resolver
	publisher presence.Publisher
	timeout   time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the presence publisher. The default discards events.
func WithPublisher(p presence.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithStoreTimeout sets the default store deadline.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service.
func NewService(store Store, resolver identity.Resolver, opts ...Option) *Service {
	if store == nil {
		panic("room store cannot be nil for Service")
	}
	if resolver == nil {
		resolver = identity.SessionResolver{}
	}

	s := &Service{
		store:     store,
		resolver:  resolver,
		publisher: presence.Nop{},
		timeout:   DefaultStoreTimeout,
		now:       time.Now,
		logger:    logx.Logger().With().Str("component", "RoomService").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoomInput describes a new room.
type CreateRoomInput struct {
	Name string
	Kind Kind

	// Secret is an optional access password for private rooms.
	Secret string
}

// CreateRoom creates a room owned by the caller together with the caller's Owner
// membership. The two rows are committed atomically.
func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (*Room, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	name, ok := normalizeName(in.Name)
	if !ok {
		return nil, errs.NewError(errs.ErrRoomNameInvalid)
	}

	kind, ok := ParseKind(string(in.Kind))
	if !ok {
		return nil, errs.NewError(errs.ErrRoomTypeInvalid)
	}

	var secretHash string
	if in.Secret != "" {
		if kind != KindPrivate {
			return nil, errs.NewError(errs.ErrInvalidParams)
		}
		if len(in.Secret) < MinSecretLength || len(in.Secret) > MaxSecretLength {
			return nil, errs.NewError(errs.ErrRoomSecretInvalid)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, errs.Wrap(errs.ErrUnknown, err)
		}
		secretHash = string(hash)
	}

	now := s.now().UTC()
	r := &Room{
		ID:         randx.ID(),
		Name:       name,
		Kind:       kind,
		CreatorID:  caller,
		Active:     true,
		CreatedAt:  now,
		SecretHash: secretHash,
	}
	owner := &Membership{
		RoomID:    r.ID,
		UserID:    caller,
		Role:      RoleOwner,
		Entered:   false,
		CreatedAt: now,
	}

	err = s.inTx(ctx, func(tx Tx) error {
		if err := tx.InsertRoom(ctx, r); err != nil {
			return err
		}
		return tx.InsertMembership(ctx, owner)
	})
	if err != nil {
		return nil, s.mapErr(ctx, err, "create room")
	}

	s.logger.Info().
		Str("room_id", r.ID).
		Str("kind", string(r.Kind)).
		Str("user_id", caller).
		Bool("has_secret", r.HasSecret()).
		Msg("Room created.")

	return r, nil
}

// Invite adds Guest memberships for userIDs to a private room. Users who already
// hold a membership are skipped. It returns the number of memberships created.
func (s *Service) Invite(ctx context.Context, roomID string, userIDs []string) (int, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return 0, err
	}
	roomID, ok := randx.ParseID(roomID)
	if !ok {
		return 0, errNotFound()
	}

	targets, err := normalizeTargets(userIDs)
	if err != nil {
		return 0, err
	}

	var created int
	err = s.inTx(ctx, func(tx Tx) error {
		r, m, err := tx.Lock(ctx, roomID, caller, LockShare)
		if err != nil {
			return err
		}
		if err := AuthorizeInvite(activeOnly(r), m); err != nil {
			return err
		}

		created, err = tx.InsertGuests(ctx, roomID, targets)
		return err
	})
	if err != nil {
		return 0, s.mapErr(ctx, err, "invite")
	}

	s.logger.Info().
		Str("room_id", roomID).
		Str("user_id", caller).
		Int("requested", len(targets)).
		Int("created", created).
		Msg("Users invited.")

	return created, nil
}

// Rename changes a room's name.
func (s *Service) Rename(ctx context.Context, roomID, newName string) (*Room, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	roomID, ok := randx.ParseID(roomID)
	if !ok {
		return nil, errNotFound()
	}

	name, ok := normalizeName(newName)
	if !ok {
		return nil, errs.NewError(errs.ErrRoomNameInvalid)
	}

	var renamed *Room
	err = s.inTx(ctx, func(tx Tx) error {
		r, m, err := tx.Lock(ctx, roomID, caller, LockExclusive)
		if err != nil {
			return err
		}
		r = activeOnly(r)
		if err := AuthorizeUpdate(r, m); err != nil {
			return err
		}

		if err := tx.UpdateRoomName(ctx, roomID, name); err != nil {
			return err
		}
		r.Name = name
		renamed = r
		return nil
	})
	if err != nil {
		return nil, s.mapErr(ctx, err, "rename room")
	}

	s.logger.Info().
		Str("room_id", roomID).
		Str("user_id", caller).
		Msg("Room renamed.")

	return renamed, nil
}

// Disable soft-deletes a room. Only its creator may do so, and a room that is
// already inactive answers with ErrRoomNotFound.
func (s *Service) Disable(ctx context.Context, roomID string) error {
	caller, err := s.caller(ctx)
	if err != nil {
		return err
	}
	roomID, ok := randx.ParseID(roomID)
	if !ok {
		return errNotFound()
	}

	err = s.inTx(ctx, func(tx Tx) error {
		r, m, err := tx.Lock(ctx, roomID, caller, LockExclusive)
		if err != nil {
			return err
		}
		if err := AuthorizeDisable(activeOnly(r), m); err != nil {
			return err
		}
		return tx.DeactivateRoom(ctx, roomID)
	})
	if err != nil {
		return s.mapErr(ctx, err, "disable room")
	}

	s.logger.Info().
		Str("room_id", roomID).
		Str("user_id", caller).
		Msg("Room disabled.")

	return nil
}

// Enter marks the caller as present in a room. Public rooms auto-create a Guest
// membership on first entry. Private rooms require an existing membership or,
// when the room has an access secret, the matching secret.
func (s *Service) Enter(ctx context.Context, roomID, secret string) (*Membership, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	roomID, ok := randx.ParseID(roomID)
	if !ok {
		return nil, errNotFound()
	}

	var (
		entered Membership
		created bool
	)
	err = s.inTx(ctx, func(tx Tx) error {
		r, m, err := tx.Lock(ctx, roomID, caller, LockShare)
		if err != nil {
			return err
		}
		r = activeOnly(r)

		verified := false
		if m == nil && secret != "" {
			verified = verifySecret(r, secret)
		}
		if err := AuthorizeEntry(r, m, verified); err != nil {
			return err
		}

		entered, created, err = tx.EnterRoom(ctx, roomID, caller)
		return err
	})
	if err != nil {
		return nil, s.mapErr(ctx, err, "enter room")
	}

	s.logger.Info().
		Str("room_id", roomID).
		Str("user_id", caller).
		Bool("joined", created).
		Msg("User entered room.")

	s.publish(ctx, presence.EventEntered, roomID, caller)

	return &entered, nil
}

// Exit clears the caller's presence flag. Exit is allowed on inactive rooms so
// stale presence can always be cleared.
func (s *Service) Exit(ctx context.Context, roomID string) (*Membership, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	roomID, ok := randx.ParseID(roomID)
	if !ok {
		return nil, errNotFound()
	}

	var exited Membership
	err = s.inTx(ctx, func(tx Tx) error {
		r, m, err := tx.Lock(ctx, roomID, caller, LockShare)
		if err != nil {
			return err
		}
		if err := AuthorizeExit(r, m); err != nil {
			return err
		}

		exited, err = tx.SetEntered(ctx, roomID, caller, false)
		return err
	})
	if err != nil {
		return nil, s.mapErr(ctx, err, "exit room")
	}

	s.logger.Info().
		Str("room_id", roomID).
		Str("user_id", caller).
		Msg("User exited room.")

	s.publish(ctx, presence.EventExited, roomID, caller)

	return &exited, nil
}

// GetRoom returns a room visible to the caller: any active public room, or an
// active private room the caller belongs to. Everything else is ErrRoomNotFound.
func (s *Service) GetRoom(ctx context.Context, roomID string) (*Room, *Membership, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, nil, err
	}
	roomID, ok := randx.ParseID(roomID)
	if !ok {
		return nil, nil, errNotFound()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r, m, err := s.store.FindRoom(ctx, roomID, caller)
	if err != nil {
		return nil, nil, s.mapErr(ctx, err, "get room")
	}
	if !CanView(r, m) {
		return nil, nil, errNotFound()
	}
	return r, m, nil
}

// ListMembers returns the memberships of a room visible to the caller.
func (s *Service) ListMembers(ctx context.Context, roomID string) ([]Membership, error) {
	r, _, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	roomID = r.ID

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	members, err := s.store.ListMembers(ctx, roomID)
	if err != nil {
		return nil, s.mapErr(ctx, err, "list members")
	}
	return members, nil
}

// ListPublicRooms returns active public rooms.
func (s *Service) ListPublicRooms(ctx context.Context) ([]Room, error) {
	if _, err := s.caller(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rooms, err := s.store.ListPublicRooms(ctx, DefaultListLimit)
	if err != nil {
		return nil, s.mapErr(ctx, err, "list public rooms")
	}
	return rooms, nil
}

// ListJoinedRooms returns active rooms of kind the caller is a member of.
func (s *Service) ListJoinedRooms(ctx context.Context, kind Kind) ([]Room, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}

	parsed, ok := ParseKind(string(kind))
	if !ok {
		return nil, errs.NewError(errs.ErrRoomTypeInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rooms, err := s.store.ListJoinedRooms(ctx, caller, parsed)
	if err != nil {
		return nil, s.mapErr(ctx, err, "list joined rooms")
	}
	return rooms, nil
}

// caller resolves the signed-in user or fails with ErrUnauthorized.
func (s *Service) caller(ctx context.Context) (string, error) {
	id, ok := s.resolver.ResolveCaller(ctx)
	if !ok || id == "" {
		return "", errs.NewError(errs.ErrUnauthorized)
	}
	return id, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) inTx(ctx context.Context, fn func(tx Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.InTx(ctx, fn)
}

// mapErr passes policy errors through unchanged and classifies store errors.
func (s *Service) mapErr(ctx context.Context, err error, op string) error {
	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	switch {
	case errors.Is(err, ErrUnknownUsers):
		return errs.NewError(errs.ErrUserNotFound)
	case errors.Is(err, ErrTransient),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		logx.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("Transient store failure.")
		return errs.Wrap(errs.ErrStoreTransient, err)
	}

	logx.Ctx(ctx).Error().Err(err).Str("op", op).Msg("Room store failure.")
	return errs.Wrap(errs.ErrUnknown, err)
}

func (s *Service) publish(ctx context.Context, typ presence.EventType, roomID, userID string) {
	ctx, cancel := s.withTimeout(context.WithoutCancel(ctx))
	defer cancel()

	ev := presence.Event{Type: typ, RoomID: roomID, UserID: userID, At: s.now().UTC()}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().
			Err(err).
			Str("room_id", roomID).
			Str("event", string(typ)).
			Msg("Failed to publish presence event.")
	}
}

// activeOnly hides inactive rooms from every operation except Exit.
func activeOnly(r *Room) *Room {
	if r == nil || !r.Active {
		return nil
	}
	return r
}

// verifySecret compares secret against the room's hash, or against a dummy hash
// when there is no room or no secret, so the cost does not depend on either.
func verifySecret(r *Room, secret string) bool {
	hash := dummySecretHash
	hasSecret := r != nil && r.IsPrivate() && r.HasSecret()
	if hasSecret {
		hash = []byte(r.SecretHash)
	}

	match := bcrypt.CompareHashAndPassword(hash, []byte(secret)) == nil
	return hasSecret && match
}

// normalizeTargets validates and deduplicates invite targets, preserving order.
func normalizeTargets(userIDs []string) ([]string, error) {
	if len(userIDs) == 0 || len(userIDs) > MaxInviteBatch {
		return nil, errs.NewError(errs.ErrInvalidParams)
	}

	seen := make(map[string]struct{}, len(userIDs))
	targets := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		id, ok := randx.ParseID(id)
		if !ok {
			return nil, errs.NewError(errs.ErrUserNotFound)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}
	return targets, nil
}
