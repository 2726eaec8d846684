package server

import (
	"context"

	"craftnexus/internal/middleware"
	"craftnexus/internal/models"
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuthRequired validates the bearer token and provisions the caller's profile.
func (s *Server) AuthRequired() []fiber.Handler {
	return []fiber.Handler{middleware.AuthRequired, s.provisionUser}
}

// WebSocketAuthRequired is AuthRequired for upgrade requests, which may carry
// the token in the query string.
func (s *Server) WebSocketAuthRequired() []fiber.Handler {
	return []fiber.Handler{middleware.WebSocketAuthRequired, s.provisionUser}
}

// provisionUser creates the local profile on first sight and blocks writes
// from banned users. It must run after one of the token middlewares.
func (s *Server) provisionUser(c *fiber.Ctx) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, identity.UserID)
	c.SetUserContext(ctx)

	user, err := s.profiles.Provision(ctx, service.ProvisionInput{
		UserID:       identity.UserID,
		Email:        identity.Email,
		UsernameHint: identity.UsernameHint,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	if user.IsBanned && c.Method() != fiber.MethodGet {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Your account is banned"))
	}

	c.Locals("user", user)
	return c.Next()
}

// AdminRequired rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, ok := c.Locals("user").(*models.User); ok && user.IsAdmin {
			return c.Next()
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Admin access required"))
	}
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.profiles.IsAdmin(ctx, userID)
}
