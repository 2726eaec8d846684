package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), uuid.New(), "test payload"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "x"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannelRoundTrip(t *testing.T) {
	t.Parallel()
	id := uuid.MustParse("0b6f7a4e-3c1d-4d7e-9d62-4f9f5d0c2a11")
	ch := UserChannel(id)
	assert.Equal(t, "notifications:user:0b6f7a4e-3c1d-4d7e-9d62-4f9f5d0c2a11", ch)

	got, ok := ParseUserChannel(ch)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ParseUserChannel("notifications:user:42")
	assert.False(t, ok)
	_, ok = ParseUserChannel("chat:conv:1")
	assert.False(t, ok)
}

func TestNotifier_PublishUserEvent(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(_ string, payload string) { got <- payload }))

	user := uuid.New()
	require.NoError(t, n.PublishUserEvent(ctx, user, EventAnalysisJob, map[string]string{"status": "completed"}))

	select {
	case raw := <-got:
		var ev struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(raw), &ev))
		assert.Equal(t, EventAnalysisJob, ev.Type)
		assert.Equal(t, "completed", ev.Payload["status"])
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
