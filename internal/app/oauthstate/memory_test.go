package oauthstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_IssueConsumeOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemoryStore(ctx, time.Minute)

	state, err := s.Issue(ctx)
	require.NoError(t, err)

	assert.NoError(t, s.Consume(ctx, state))
	assert.ErrorIs(t, s.Consume(ctx, state), ErrStateInvalid)
}

func TestMemoryStore_UnknownState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemoryStore(ctx, time.Minute)
	assert.ErrorIs(t, s.Consume(ctx, "never-issued"), ErrStateInvalid)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemoryStore(ctx, time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	state, err := s.Issue(ctx)
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)
	assert.ErrorIs(t, s.Consume(ctx, state), ErrStateInvalid)
}

func TestMemoryStore_RemoveExpired(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewMemoryStore(ctx, time.Minute)
	current := time.Now()
	s.now = func() time.Time { return current }

	_, err := s.Issue(ctx)
	require.NoError(t, err)
	fresh, err := s.Issue(ctx)
	require.NoError(t, err)

	current = current.Add(30 * time.Second)
	s.states[fresh] = current.Add(time.Minute)
	current = current.Add(45 * time.Second)

	s.removeExpired()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.states, 1)
	assert.Contains(t, s.states, fresh)
}
