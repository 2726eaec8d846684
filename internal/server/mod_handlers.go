package server

import (
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMods handles GET /api/mods
// @Summary Browse the mod catalog
// @Tags mods
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category"
// @Param loader query string false "Mod loader"
// @Param version query string false "Game version"
// @Param sort query string false "downloads, updated or name"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} PageResponse[models.Mod]
// @Failure 400 {object} models.ErrorResponse
// @Router /mods [get]
func (s *Server) GetMods(c *fiber.Ctx) error {
	page := parsePagination(c, 24)
	mods, total, err := s.mods.List(c.UserContext(), service.ListModsInput{
		Query:     c.Query("q"),
		Category:  c.Query("category"),
		Loader:    c.Query("loader"),
		Version:   c.Query("version"),
		Sort:      c.Query("sort"),
		PageInput: page.input(),
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(newPage(mods, total, page))
}

// GetMod handles GET /api/mods/:slug
func (s *Server) GetMod(c *fiber.Ctx) error {
	mod, err := s.mods.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(mod)
}

// ModRequest is a catalog entry as sent by admins and the sync job.
type ModRequest struct {
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Summary      string   `json:"summary"`
	Description  string   `json:"description"`
	IconURL      string   `json:"icon_url"`
	Author       string   `json:"author"`
	Categories   []string `json:"categories"`
	Loaders      []string `json:"loaders"`
	GameVersions []string `json:"game_versions"`
	Downloads    int64    `json:"downloads"`
	Source       string   `json:"source"`
	ExternalID   string   `json:"external_id"`
	ExternalURL  string   `json:"external_url"`
	Featured     bool     `json:"featured"`
}

func (r ModRequest) input() service.ModInput {
	return service.ModInput{
		Slug:         r.Slug,
		Name:         r.Name,
		Summary:      r.Summary,
		Description:  r.Description,
		IconURL:      r.IconURL,
		Author:       r.Author,
		Categories:   r.Categories,
		Loaders:      r.Loaders,
		GameVersions: r.GameVersions,
		Downloads:    r.Downloads,
		Source:       r.Source,
		ExternalID:   r.ExternalID,
		ExternalURL:  r.ExternalURL,
		Featured:     r.Featured,
	}
}

// AdminCreateMod handles POST /api/admin/mods
func (s *Server) AdminCreateMod(c *fiber.Ctx) error {
	var req ModRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	mod, err := s.mods.Create(c.UserContext(), req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(mod)
}

// AdminUpdateMod handles PUT /api/admin/mods/:id
func (s *Server) AdminUpdateMod(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req ModRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	mod, err := s.mods.Update(c.UserContext(), id, req.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(mod)
}

// AdminDeleteMod handles DELETE /api/admin/mods/:id
func (s *Server) AdminDeleteMod(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.mods.Delete(c.UserContext(), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ModImportRequest is one batch from the catalog sync job.
type ModImportRequest struct {
	Mods []ModRequest `json:"mods"`
}

// AdminImportMods handles POST /api/admin/mods/import
// @Summary Bulk upsert synced mods
// @Description Records are keyed by (source, external_id). Existing rows keep their slug and featured flag.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ModImportRequest true "Records"
// @Success 200 {object} repository.ModImportResult
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/mods/import [post]
func (s *Server) AdminImportMods(c *fiber.Ctx) error {
	var req ModImportRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	records := make([]service.ModInput, 0, len(req.Mods))
	for _, m := range req.Mods {
		records = append(records, m.input())
	}
	result, err := s.mods.Import(c.UserContext(), records)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(result)
}
