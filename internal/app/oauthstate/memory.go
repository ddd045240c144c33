package oauthstate

import (
	"context"
	"sync"
	"time"

	"roomchat/internal/pkg/logx"
	"roomchat/internal/pkg/randx"
)

// MemoryStore is an in-process Store for single-instance deployments and tests.
type MemoryStore struct {
	ttl time.Duration

	// states maps each issued token to its expiry.
	states map[string]time.Time

	// mu guards states.
	mu sync.Mutex

	// now is replaceable in tests.
	now func() time.Time
}

// NewMemoryStore creates a MemoryStore and starts a sweeper that removes expired
// tokens every minute until ctx is cancelled.
func NewMemoryStore(ctx context.Context, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &MemoryStore{
		ttl:    ttl,
		states: make(map[string]time.Time),
		now:    time.Now,
	}

	go s.sweep(ctx, time.Minute)

	return s
}

// Issue implements Store.
func (s *MemoryStore) Issue(_ context.Context) (string, error) {
	state, err := randx.StateToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.states[state] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return state, nil
}

// Consume implements Store.
func (s *MemoryStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.states[state]
	if !ok {
		return ErrStateInvalid
	}
	delete(s.states, state)

	if s.now().After(expiry) {
		return ErrStateInvalid
	}
	return nil
}

func (s *MemoryStore) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for state, expiry := range s.states {
		if now.After(expiry) {
			delete(s.states, state)
			removed++
		}
	}

	if removed > 0 {
		logx.Debug("Expired OAuth states removed", "removed", removed, "remaining", len(s.states))
	}
}
