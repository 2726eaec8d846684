package server

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"craftnexus/internal/models"
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

func (p Pagination) input() service.PageInput {
	return service.PageInput{Limit: p.Limit, Offset: p.Offset}
}

// PageResponse wraps one page of a list endpoint.
type PageResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func newPage[T any](items []T, total int64, p Pagination) PageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return PageResponse[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseUUID is parseID for uuid route parameters.
func (s *Server) parseUUID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil || id == uuid.Nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return uuid.Nil, errResponseWritten
	}
	return id, nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// parseBody decodes the JSON body into dst, writing a 400 on failure.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// currentUserID returns the caller set by AuthRequired.
func currentUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals("userID").(uuid.UUID)
	return id
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Status()
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// mapServiceError writes the standard error body for err.
func mapServiceError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	switch {
	case status == fiber.StatusNotFound && errors.Is(err, gorm.ErrRecordNotFound):
		err = models.NewNotFoundError("Resource", c.Params("id"))
	case status == fiber.StatusInternalServerError:
		slog.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		if !models.IsCode(err, models.CodeInternal) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}
