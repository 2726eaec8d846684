package server

import (
	"fmt"
	"io"
	"time"

	"craftnexus/internal/models"
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AnalysisJobResponse is the polling view of a weapon analysis job.
type AnalysisJobResponse struct {
	ID          string              `json:"id"`
	Status      string              `json:"status"`
	Result      *models.WeaponStats `json:"result,omitempty"`
	Error       string              `json:"error,omitempty"`
	PreviewURL  string              `json:"preview_url,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
}

func newAnalysisJobResponse(job *models.WeaponAnalysisJob) AnalysisJobResponse {
	resp := AnalysisJobResponse{
		ID:          job.ID.String(),
		Status:      job.Status,
		Result:      job.Result,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}
	if job.PreviewKey != "" {
		resp.PreviewURL = fmt.Sprintf("/api/weapon-analysis/%s/preview", job.ID)
	}
	return resp
}

// SubmitWeaponAnalysis handles POST /api/weapon-analysis
// @Summary Submit a weapon screenshot
// @Description Accepts a multipart "image" field. The job runs in the background; poll GET /weapon-analysis/{id}.
// @Tags weapon-analysis
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Screenshot (jpeg, png, webp or gif)"
// @Success 202 {object} AnalysisJobResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /weapon-analysis [post]
func (s *Server) SubmitWeaponAnalysis(c *fiber.Ctx) error {
	content, err := s.readUpload(c, "image")
	if err != nil {
		return mapServiceError(c, err)
	}

	job, err := s.analysis.Submit(c.UserContext(), service.SubmitAnalysisInput{
		UserID:  currentUserID(c),
		Content: content,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(newAnalysisJobResponse(job))
}

// readUpload returns the named multipart file, nil when absent. It reads one
// byte past the limit so the service can tell an oversized file apart.
func (s *Server) readUpload(c *fiber.Ctx, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUploadBytes()+1))
	if err != nil {
		return nil, models.NewValidationError("Unable to read uploaded file")
	}
	return data, nil
}

// ListWeaponAnalyses handles GET /api/weapon-analysis
func (s *Server) ListWeaponAnalyses(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	jobs, total, err := s.analysis.List(c.UserContext(), currentUserID(c), page.input())
	if err != nil {
		return mapServiceError(c, err)
	}
	items := make([]AnalysisJobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, newAnalysisJobResponse(&jobs[i]))
	}
	return c.JSON(newPage(items, total, page))
}

// GetWeaponAnalysis handles GET /api/weapon-analysis/:id
// @Summary Poll an analysis job
// @Tags weapon-analysis
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} AnalysisJobResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /weapon-analysis/{id} [get]
func (s *Server) GetWeaponAnalysis(c *fiber.Ctx) error {
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}
	job, err := s.analysis.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(newAnalysisJobResponse(job))
}

// GetWeaponAnalysisPreview handles GET /api/weapon-analysis/:id/preview
func (s *Server) GetWeaponAnalysisPreview(c *fiber.Ctx) error {
	id, err := s.parseUUID(c, "id")
	if err != nil {
		return nil
	}
	data, err := s.analysis.Preview(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/webp")
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	return c.Send(data)
}
