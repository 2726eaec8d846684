package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebsocketUpgrade rejects plain HTTP requests on the socket route.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WebsocketHandler returns a websocket handler that registers connections with the Hub.
// Authentication is handled by route middleware and userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uuid.UUID)
		if !ok || s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(uid, conn)
		if err != nil {
			slog.Warn("websocket register failed", slog.String("user_id", uid.String()), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
