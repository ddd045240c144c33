/*
Package presence publishes room entry and exit events to the real-time layer.

Delivery to connected clients is handled by subscribers outside this service.
Publishing is best effort: callers log failures and carry on.
*/
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventType names a presence transition.
type EventType string

const (
	EventEntered EventType = "entered"
	EventExited  EventType = "exited"
)

// Event is one committed presence change.
type Event struct {
	Type   EventType `json:"type"`
	RoomID string    `json:"roomId"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

// Publisher fans presence events out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop discards events. It is used when no broker is configured.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// RedisPublisher publishes events as JSON on a per-room Redis channel.
type RedisPublisher struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPublisher creates a RedisPublisher. An empty keyPrefix defaults to "roomchat:".
func NewRedisPublisher(client *redis.Client, keyPrefix string) *RedisPublisher {
	if client == nil {
		panic("redis client cannot be nil for RedisPublisher")
	}
	if keyPrefix == "" {
		keyPrefix = "roomchat:"
	}
	return &RedisPublisher{client: client, keyPrefix: keyPrefix}
}

// Channel returns the pub/sub channel carrying a room's presence events.
func (p *RedisPublisher) Channel(roomID string) string {
	return fmt.Sprintf("%sroom:%s:presence", p.keyPrefix, roomID)
}

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("presence: marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.Channel(ev.RoomID), body).Err(); err != nil {
		return fmt.Errorf("redis: publish presence event: %w", err)
	}
	return nil
}
