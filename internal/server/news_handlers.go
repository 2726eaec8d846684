package server

import (
	"craftnexus/internal/models"
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

func newsListInput(c *fiber.Ctx, page Pagination) service.ListNewsInput {
	return service.ListNewsInput{
		Category:  c.Query("category"),
		Query:     c.Query("q"),
		Featured:  c.QueryBool("featured", false),
		PageInput: page.input(),
	}
}

// GetNews handles GET /api/news
// @Summary List published news
// @Description Newest first. Filter by category, free-text q, or featured.
// @Tags news
// @Produce json
// @Param category query string false "Category"
// @Param q query string false "Search text"
// @Param featured query bool false "Only featured articles"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} PageResponse[models.News]
// @Router /news [get]
func (s *Server) GetNews(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	items, total, err := s.news.ListPublished(c.UserContext(), newsListInput(c, page))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(newPage(items, total, page))
}

// GetNewsArticle handles GET /api/news/:slug
// @Summary Get a published article
// @Tags news
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} models.News
// @Failure 404 {object} models.ErrorResponse
// @Router /news/{slug} [get]
func (s *Server) GetNewsArticle(c *fiber.Ctx) error {
	item, err := s.news.GetPublished(c.UserContext(), c.Params("slug"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(item)
}

// NewsRequest is the body for creating or updating an article.
type NewsRequest struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
	CoverImageURL string `json:"cover_image_url"`
	Category      string `json:"category"`
	Featured      bool   `json:"featured"`
	Publish       bool   `json:"publish"`
}

func (r NewsRequest) input() service.NewsInput {
	return service.NewsInput{
		Title:         r.Title,
		Slug:          r.Slug,
		Summary:       r.Summary,
		Content:       r.Content,
		CoverImageURL: r.CoverImageURL,
		Category:      r.Category,
		Featured:      r.Featured,
		Publish:       r.Publish,
	}
}

// AdminListNews handles GET /api/admin/news (drafts included).
func (s *Server) AdminListNews(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	items, total, err := s.news.ListAll(c.UserContext(), newsListInput(c, page))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(newPage(items, total, page))
}

// AdminGetNews handles GET /api/admin/news/:id
func (s *Server) AdminGetNews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	item, err := s.news.GetByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(item)
}

// AdminCreateNews handles POST /api/admin/news
// @Summary Create an article
// @Description The slug is derived from the title unless one is given, in which case it is pinned.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body NewsRequest true "Article"
// @Success 201 {object} models.News
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/news [post]
func (s *Server) AdminCreateNews(c *fiber.Ctx) error {
	var req NewsRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	item, err := s.news.Create(c.UserContext(), currentUserID(c), req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// AdminUpdateNews handles PUT /api/admin/news/:id
func (s *Server) AdminUpdateNews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req NewsRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	item, err := s.news.Update(c.UserContext(), id, req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(item)
}

// AdminPublishNews handles POST /api/admin/news/:id/publish with {"published": bool}.
func (s *Server) AdminPublishNews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Published bool `json:"published"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	item, err := s.news.SetPublished(c.UserContext(), id, req.Published)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(item)
}

// AdminDeleteNews handles DELETE /api/admin/news/:id
func (s *Server) AdminDeleteNews(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.news.Delete(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetTicker handles GET /api/ticker
// @Summary Active ticker lines
// @Tags news
// @Produce json
// @Success 200 {array} models.TickerItem
// @Router /ticker [get]
func (s *Server) GetTicker(c *fiber.Ctx) error {
	items, err := s.ticker.ListActive(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	if items == nil {
		items = []models.TickerItem{}
	}
	return c.JSON(items)
}

// TickerRequest is the body for creating or updating a ticker line.
type TickerRequest struct {
	Text   string `json:"text"`
	URL    string `json:"url"`
	Active *bool  `json:"active"`
}

// AdminListTicker handles GET /api/admin/ticker
func (s *Server) AdminListTicker(c *fiber.Ctx) error {
	items, err := s.ticker.ListAll(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	if items == nil {
		items = []models.TickerItem{}
	}
	return c.JSON(items)
}

// AdminCreateTickerItem handles POST /api/admin/ticker
func (s *Server) AdminCreateTickerItem(c *fiber.Ctx) error {
	var req TickerRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	item, err := s.ticker.Create(c.UserContext(), service.TickerInput{Text: req.Text, URL: req.URL, Active: req.Active})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// AdminUpdateTickerItem handles PUT /api/admin/ticker/:id
func (s *Server) AdminUpdateTickerItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req TickerRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	item, err := s.ticker.Update(c.UserContext(), id, service.TickerInput{Text: req.Text, URL: req.URL, Active: req.Active})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(item)
}

// AdminDeleteTickerItem handles DELETE /api/admin/ticker/:id
func (s *Server) AdminDeleteTickerItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.ticker.Delete(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TickerOrderRequest lists every ticker id in its new order.
type TickerOrderRequest struct {
	IDs []uint `json:"ids"`
}

// AdminReorderTicker handles PUT /api/admin/ticker/order
// @Summary Reorder the ticker
// @Description The ids must be a permutation of all existing ticker ids.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TickerOrderRequest true "New order"
// @Success 200 {array} models.TickerItem
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/ticker/order [put]
func (s *Server) AdminReorderTicker(c *fiber.Ctx) error {
	var req TickerOrderRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	items, err := s.ticker.Reorder(c.UserContext(), req.IDs)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(items)
}
