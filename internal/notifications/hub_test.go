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

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterAndBroadcastToUser(t *testing.T) {
	hub := NewHub()
	alice := uuid.New()
	bob := uuid.New()

	a1, err := hub.Register(alice, nil)
	require.NoError(t, err)
	a2, err := hub.Register(alice, nil)
	require.NoError(t, err)
	b1, err := hub.Register(bob, nil)
	require.NoError(t, err)

	hub.Broadcast(alice, "hello")

	assert.Equal(t, "hello", string(<-a1.Send))
	assert.Equal(t, "hello", string(<-a2.Send))
	assert.Empty(t, b1.Send)
	assert.True(t, hub.IsOnline(alice))
	assert.Equal(t, 3, hub.ConnectionCount())
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()
	user := uuid.New()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(user, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(user, nil)
	assert.Error(t, err)
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	hub := NewHub()
	user := uuid.New()
	c, err := hub.Register(user, nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, hub.IsOnline(user))

	// sending to a closed client must not panic
	c.TrySend([]byte("late"))
}

func TestHub_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(uuid.New(), nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		c.TrySend([]byte("x"))
	}
	assert.Len(t, c.Send, sendBuffer)
	assert.True(t, c.Lagged())
}

func TestResyncNoticeIsAnEvent(t *testing.T) {
	var ev struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(resyncNotice, &ev))
	assert.Equal(t, EventResync, ev.Type)
	assert.Equal(t, "buffer_full", ev.Payload["reason"])
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(uuid.New(), nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, open := <-c.Send
	assert.False(t, open)

	_, err = hub.Register(uuid.New(), nil)
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.NoError(t, hub.Shutdown(context.Background()))
}

func TestHub_StartWiringForwardsRedisMessages(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	user := uuid.New()
	c, err := hub.Register(user, nil)
	require.NoError(t, err)
	other, err := hub.Register(uuid.New(), nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(ctx, user, `{"type":"notification"}`))
	assert.Eventually(t, func() bool { return len(c.Send) == 1 }, testEventuallyTimeout, testPollInterval)
	assert.Empty(t, other.Send)

	require.NoError(t, n.PublishBroadcast(ctx, "all"))
	assert.Eventually(t, func() bool { return len(other.Send) == 1 }, testEventuallyTimeout, testPollInterval)
}
