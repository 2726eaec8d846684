package notifications

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"craftnexus/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Browsers only send pongs and close frames; anything bigger is abuse.
	maxInboundBytes = 1024
	sendBuffer      = 64
)

// EventResync tells a socket that it missed pushes and should refetch
// GET /api/notifications.
const EventResync = "resync"

var resyncNotice, _ = json.Marshal(Event{Type: EventResync, Payload: map[string]string{"reason": "buffer_full"}})

// Client is one websocket connection of a signed-in user.
type Client struct {
	UserID uuid.UUID
	// Send carries encoded events to the write loop. It is closed on unregister.
	Send chan []byte

	hub    *Hub
	conn   *websocket.Conn
	lagged atomic.Bool

	sendMu sync.RWMutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
		hub:    hub,
		conn:   conn,
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// ReadPump discards inbound frames and keeps the read deadline moving while
// pongs arrive. It returns when the peer goes away.
func (c *Client) ReadPump() {
	defer c.hub.UnregisterClient(c)

	c.conn.SetReadLimit(maxInboundBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read ended", slog.String("user_id", c.UserID.String()), slog.String("error", err.Error()))
			}
			return
		}
	}
}

// WritePump drains Send onto the socket and pings on an interval. A client
// that overflowed its buffer gets one resync event once it catches up.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
			if len(c.Send) == 0 && c.lagged.CompareAndSwap(true, false) {
				observability.WebSocketEventsTotal.WithLabelValues(EventResync).Inc()
				if err := c.write(websocket.TextMessage, resyncNotice); err != nil {
					return
				}
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}

// TrySend queues msg without blocking. A full buffer drops the message and
// marks the client for a resync.
func (c *Client) TrySend(msg []byte) {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "closed").Inc()
		return
	}

	select {
	case c.Send <- msg:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.hub.Name(), "full").Inc()
		if c.lagged.CompareAndSwap(false, true) {
			slog.Warn("notification buffer full", slog.String("user_id", c.UserID.String()))
		}
	}
}

// Lagged reports whether the client dropped messages since its last resync.
func (c *Client) Lagged() bool { return c.lagged.Load() }
