package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"craftnexus/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("notification hub is shut down")

// Hub is a websocket hub that maps userID -> set of Clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uuid.UUID]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates a new Hub instance for managing notifications.
func NewHub() *Hub {
	return &Hub{conns: make(map[uuid.UUID]map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notification hub" }

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, errors.New("user connection limit reached")
	}

	client := newClient(h, conn, userID)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()
	return client, nil
}

// UnregisterClient removes the client. Calling it twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; exists {
		delete(m, client)
		h.totalConns--
		observability.WebSocketConnectionsTotal.Dec()
		client.closeSend()
	}
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
}

// Broadcast sends message to all connections for userID
func (h *Hub) Broadcast(userID uuid.UUID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether a user has at least one socket on this instance.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// ConnectionCount returns the number of sockets held by this instance.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// StartWiring connects the Notifier to this hub: it subscribes to Redis and
// forwards messages to matching userID connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, h.dispatch)
}

func (h *Hub) dispatch(channel, payload string) {
	if channel == broadcastChannel {
		observability.WebSocketEventsTotal.WithLabelValues("broadcast").Inc()
		h.BroadcastAll(payload)
		return
	}
	userID, ok := ParseUserChannel(channel)
	if !ok {
		slog.Warn("invalid notification channel", slog.String("channel", channel))
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues("user").Inc()
	h.Broadcast(userID, payload)
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	// WritePump sends the close frame once it sees the closed channel.
	for _, userConns := range h.conns {
		for client := range userConns {
			client.closeSend()
		}
	}
	observability.WebSocketConnectionsTotal.Sub(float64(h.totalConns))
	h.conns = make(map[uuid.UUID]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
