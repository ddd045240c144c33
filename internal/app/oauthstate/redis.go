package oauthstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roomchat/internal/pkg/randx"
)

// RedisStore keeps state tokens in Redis so any instance can serve the callback.
type RedisStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewRedisStore creates a RedisStore. An empty keyPrefix defaults to "roomchat:".
func NewRedisStore(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil for RedisStore")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if keyPrefix == "" {
		keyPrefix = "roomchat:"
	}

	return &RedisStore{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) stateKey(state string) string {
	return fmt.Sprintf("%soauth:state:%s", s.keyPrefix, state)
}

// Issue implements Store.
func (s *RedisStore) Issue(ctx context.Context) (string, error) {
	state, err := randx.StateToken()
	if err != nil {
		return "", err
	}

	ok, err := s.client.SetNX(ctx, s.stateKey(state), 1, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis: store oauth state: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("redis: oauth state collision")
	}

	return state, nil
}

// Consume implements Store. GETDEL makes validation and removal one atomic step.
func (s *RedisStore) Consume(ctx context.Context, state string) error {
	_, err := s.client.GetDel(ctx, s.stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrStateInvalid
	}
	if err != nil {
		return fmt.Errorf("redis: consume oauth state: %w", err)
	}
	return nil
}
