package server

import (
	"craftnexus/internal/models"
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/{news|mods}/:id/comments and returns the threaded tree.
func (s *Server) GetComments(targetType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		tree, err := s.comments.ListTree(c.UserContext(), targetType, id)
		if err != nil {
			return mapServiceError(c, err)
		}
		if tree == nil {
			tree = []*models.Comment{}
		}
		return c.JSON(tree)
	}
}

// CreateCommentRequest is a new comment, optionally replying to parent_id.
type CreateCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// CreateComment handles POST /api/{news|mods}/:id/comments
func (s *Server) CreateComment(targetType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		var req CreateCommentRequest
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		comment, err := s.comments.Create(c.UserContext(), service.CreateCommentInput{
			UserID:     currentUserID(c),
			TargetType: targetType,
			TargetID:   id,
			ParentID:   req.ParentID,
			Content:    req.Content,
		})
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	}
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ContentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.comments.Update(c.UserContext(), service.UpdateCommentInput{
		UserID:    currentUserID(c),
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete a comment
// @Description Comments with replies are tombstoned so the thread stays intact.
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.comments.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
