package presence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{Type: EventEntered}))
}

func TestRedisPublisher_Channel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	p := NewRedisPublisher(client, "")
	assert.Equal(t, "roomchat:room:r1:presence", p.Channel("r1"))

	p = NewRedisPublisher(client, "test:")
	assert.Equal(t, "test:room:r1:presence", p.Channel("r1"))
}

func TestEvent_JSON(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	body, err := json.Marshal(Event{Type: EventExited, RoomID: "r1", UserID: "u1", At: at})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"exited","roomId":"r1","userId":"u1","at":"2026-05-01T09:30:00Z"}`, string(body))
}
