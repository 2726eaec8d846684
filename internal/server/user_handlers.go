package server

import (
	"craftnexus/internal/models"
	"craftnexus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current profile
// @Description Returns the caller's profile, provisioning it on first use.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}
	return c.JSON(user)
}

// UpdateProfileRequest is the body of PUT /api/users/me. Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName       *string `json:"display_name"`
	Bio               *string `json:"bio"`
	AvatarURL         *string `json:"avatar_url"`
	MinecraftUsername *string `json:"minecraft_username"`
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.profiles.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:            currentUserID(c),
		DisplayName:       req.DisplayName,
		Bio:               req.Bio,
		AvatarURL:         req.AvatarURL,
		MinecraftUsername: req.MinecraftUsername,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// GetPublicProfile handles GET /api/users/:username
// @Summary Public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	user, err := s.profiles.GetPublicProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(user)
}

// GetLinkedAccounts handles GET /api/users/me/linked-accounts
func (s *Server) GetLinkedAccounts(c *fiber.Ctx) error {
	accounts, err := s.profiles.ListLinkedAccounts(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	if accounts == nil {
		accounts = []models.LinkedAccount{}
	}
	return c.JSON(accounts)
}

// LinkAccountRequest carries the identity the provider's OAuth callback returned.
type LinkAccountRequest struct {
	Provider    string `json:"provider"`
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

// LinkAccount handles POST /api/users/me/linked-accounts
// @Summary Link a third-party account
// @Description Relinking the same provider replaces the previous account.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LinkAccountRequest true "Linked identity"
// @Success 201 {object} models.LinkedAccount
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me/linked-accounts [post]
func (s *Server) LinkAccount(c *fiber.Ctx) error {
	var req LinkAccountRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	account, err := s.profiles.LinkAccount(c.UserContext(), service.LinkAccountInput{
		UserID:      currentUserID(c),
		Provider:    req.Provider,
		ExternalID:  req.ExternalID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

// UnlinkAccount handles DELETE /api/users/me/linked-accounts/:provider
func (s *Server) UnlinkAccount(c *fiber.Ctx) error {
	if err := s.profiles.UnlinkAccount(c.UserContext(), currentUserID(c), c.Params("provider")); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFeatureFlags returns configured feature flags and evaluated state for the current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}

// GetMyFeatures handles GET /api/features. Anonymous callers only see flags
// that are fully on.
func (s *Server) GetMyFeatures(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(map[string]bool{})
	}
	return c.JSON(s.featureFlags.Snapshot(currentUserID(c)))
}
