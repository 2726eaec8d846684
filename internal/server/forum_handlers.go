package server

import (
	"context"

	"craftnexus/internal/models"
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetForumCategories handles GET /api/forum/categories
// @Summary List forum categories
// @Tags forum
// @Produce json
// @Success 200 {array} models.ForumCategory
// @Router /forum/categories [get]
func (s *Server) GetForumCategories(c *fiber.Ctx) error {
	categories, err := s.forum.ListCategories(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	if categories == nil {
		categories = []models.ForumCategory{}
	}
	return c.JSON(categories)
}

// ThreadListResponse is one page of threads in a category.
type ThreadListResponse struct {
	Category *models.ForumCategory `json:"category"`
	PageResponse[models.ForumThread]
}

// GetForumThreads handles GET /api/forum/categories/:slug/threads
// @Summary List threads in a category
// @Description Pinned threads first, then by last activity.
// @Tags forum
// @Produce json
// @Param slug path string true "Category slug"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} ThreadListResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /forum/categories/{slug}/threads [get]
func (s *Server) GetForumThreads(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	category, threads, total, err := s.forum.ListThreads(c.UserContext(), c.Params("slug"), page.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(ThreadListResponse{Category: category, PageResponse: newPage(threads, total, page)})
}

// CreateThreadRequest opens a thread with its first post.
type CreateThreadRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateForumThread handles POST /api/forum/categories/:slug/threads
// @Summary Start a thread
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Category slug"
// @Param body body CreateThreadRequest true "Thread"
// @Success 201 {object} models.ForumThread
// @Failure 400 {object} models.ErrorResponse
// @Router /forum/categories/{slug}/threads [post]
func (s *Server) CreateForumThread(c *fiber.Ctx) error {
	var req CreateThreadRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	thread, err := s.forum.CreateThread(c.UserContext(), service.CreateThreadInput{
		UserID:       currentUserID(c),
		CategorySlug: c.Params("slug"),
		Title:        req.Title,
		Content:      req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(thread)
}

// GetForumThread handles GET /api/forum/threads/:id
func (s *Server) GetForumThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)
	view, err := s.forum.GetThread(c.UserContext(), id, page.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	if view.Posts == nil {
		view.Posts = []models.ForumPost{}
	}
	return c.JSON(view)
}

// ContentRequest is a body carrying only text.
type ContentRequest struct {
	Content string `json:"content"`
}

// ReplyToThread handles POST /api/forum/threads/:id/posts
// @Summary Reply to a thread
// @Description Locked threads reject replies with 400.
// @Tags forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param body body ContentRequest true "Reply"
// @Success 201 {object} models.ForumPost
// @Failure 400 {object} models.ErrorResponse
// @Router /forum/threads/{id}/posts [post]
func (s *Server) ReplyToThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ContentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.forum.Reply(c.UserContext(), service.ReplyInput{
		UserID:   currentUserID(c),
		ThreadID: id,
		Content:  req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditForumPost handles PUT /api/forum/posts/:id
func (s *Server) EditForumPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ContentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.forum.EditPost(c.UserContext(), service.EditPostInput{
		UserID:  currentUserID(c),
		PostID:  id,
		Content: req.Content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(post)
}

// DeleteForumPost handles DELETE /api/forum/posts/:id
func (s *Server) DeleteForumPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.forum.DeletePost(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteForumThread handles DELETE /api/forum/threads/:id
func (s *Server) DeleteForumThread(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.forum.DeleteThread(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CategoryRequest is the body for creating or updating a forum category.
type CategoryRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

func (r CategoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Slug: r.Slug, Name: r.Name, Description: r.Description, Position: r.Position}
}

// AdminCreateForumCategory handles POST /api/admin/forum/categories
func (s *Server) AdminCreateForumCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	category, err := s.forum.CreateCategory(c.UserContext(), req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// AdminUpdateForumCategory handles PUT /api/admin/forum/categories/:id
func (s *Server) AdminUpdateForumCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	category, err := s.forum.UpdateCategory(c.UserContext(), id, req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(category)
}

// AdminPinThread handles POST /api/admin/forum/threads/:id/pin with {"value": bool}.
func (s *Server) AdminPinThread(c *fiber.Ctx) error {
	return s.setThreadFlag(c, s.forum.SetPinned)
}

// AdminLockThread handles POST /api/admin/forum/threads/:id/lock with {"value": bool}.
func (s *Server) AdminLockThread(c *fiber.Ctx) error {
	return s.setThreadFlag(c, s.forum.SetLocked)
}

func (s *Server) setThreadFlag(c *fiber.Ctx, set func(ctx context.Context, id uint, value bool) error) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Value bool `json:"value"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := set(c.UserContext(), id, req.Value); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
