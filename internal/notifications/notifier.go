// Package notifications provides real-time notification delivery over Redis and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	broadcastChannel  = "notifications:broadcast"
)

// Event types pushed to websocket clients.
const (
	EventNotification = "notification"
	EventAnalysisJob  = "analysis_job"
)

// Event is the envelope every pushed message uses.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uuid.UUID, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishUserEvent wraps payload in an Event and publishes it to the user's channel.
func (n *Notifier) PublishUserEvent(ctx context.Context, userID uuid.UUID, eventType string, payload any) error {
	b, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.PublishUser(ctx, userID, string(b))
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to every user channel and the broadcast channel
// and calls onMessage for each incoming message until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
	// Wait for the subscription so messages published right after are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("notification dispatch panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uuid.UUID) string {
	return userChannelPrefix + userID.String()
}

// ParseUserChannel extracts the user id from a channel built by UserChannel.
func ParseUserChannel(channel string) (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
