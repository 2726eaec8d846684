package server

import (
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReportRequest flags a post, comment or user for the moderators.
type ReportRequest struct {
	TargetType string `json:"target_type"`
	TargetID   uint   `json:"target_id"`
	Reason     string `json:"reason"`
}

// CreateReport handles POST /api/reports
// @Summary Report content
// @Description One open report per reporter and target.
// @Tags moderation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReportRequest true "Report"
// @Success 201 {object} models.Report
// @Failure 409 {object} models.ErrorResponse
// @Router /reports [post]
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req ReportRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	report, err := s.moderation.CreateReport(c.UserContext(), service.CreateReportInput{
		ReporterID: currentUserID(c),
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// AdminListReports handles GET /api/admin/reports?status=open
func (s *Server) AdminListReports(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	reports, total, err := s.moderation.ListReports(c.UserContext(), c.Query("status"), page.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(newPage(reports, total, page))
}

// AdminResolveReport handles POST /api/admin/reports/:id/resolve with {"action": "dismiss"|"remove"}.
func (s *Server) AdminResolveReport(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	report, err := s.moderation.Resolve(c.UserContext(), service.ResolveReportInput{
		AdminID:  currentUserID(c),
		ReportID: id,
		Action:   req.Action,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(report)
}

// BanRequest toggles a user's ban. A reason is required when banning.
type BanRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason"`
}

// AdminSetBan handles POST /api/admin/users/:userId/ban
// @Summary Ban or unban a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param body body BanRequest true "Ban state"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/users/{userId}/ban [post]
func (s *Server) AdminSetBan(c *fiber.Ctx) error {
	userID, err := s.parseUUID(c, "userId")
	if err != nil {
		return nil
	}
	var req BanRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.moderation.SetBan(c.UserContext(), service.BanInput{
		AdminID: currentUserID(c),
		UserID:  userID,
		Banned:  req.Banned,
		Reason:  req.Reason,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}
