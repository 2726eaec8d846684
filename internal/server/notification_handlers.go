package server

import (
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications?unread_first=true
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread_first query bool false "Unread notifications first"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} PageResponse[models.Notification]
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	items, total, err := s.notifications.List(c.UserContext(), service.ListNotificationsInput{
		UserID:      currentUserID(c),
		UnreadFirst: c.QueryBool("unread_first", false),
		PageInput:   page.input(),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(newPage(items, total, page))
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notifications.UnreadCount(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notifications.MarkRead(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := s.notifications.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}
