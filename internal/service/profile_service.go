package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"craftnexus/internal/cache"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
)

var (
	minecraftNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)
	usernameStrip        = regexp.MustCompile(`[^a-z0-9_]+`)
)

// ProvisionInput is the identity carried by a verified access token.
type ProvisionInput struct {
	UserID       uuid.UUID
	Email        string
	UsernameHint string
}

// UpdateProfileInput holds the editable profile fields. Nil leaves a field unchanged.
type UpdateProfileInput struct {
	UserID            uuid.UUID
	DisplayName       *string
	Bio               *string
	AvatarURL         *string
	MinecraftUsername *string
}

// LinkAccountInput is the identity returned by a provider's OAuth callback.
type LinkAccountInput struct {
	UserID      uuid.UUID
	Provider    string
	ExternalID  string
	DisplayName string
}

// ProfileService manages local profiles of identity-provider users.
type ProfileService struct {
	users     repository.UserRepository
	links     repository.LinkedAccountRepository
	providers []string
}

func NewProfileService(
	users repository.UserRepository,
	links repository.LinkedAccountRepository,
	providers []string,
) *ProfileService {
	return &ProfileService{users: users, links: links, providers: providers}
}

// Provision returns the profile for the token subject, creating it on first sight.
func (s *ProfileService) Provision(ctx context.Context, in ProvisionInput) (*models.User, error) {
	if in.UserID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Invalid token subject")
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	base := usernameBase(in.UsernameHint, in.Email)
	for attempt := 0; attempt < 5; attempt++ {
		username, err := s.uniqueUsername(ctx, base)
		if err != nil {
			return nil, err
		}
		user = &models.User{
			ID:       in.UserID,
			Username: username,
			Email:    strings.TrimSpace(in.Email),
		}
		err = s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		// Either a parallel request provisioned this user or took the username.
		if existing, getErr := s.users.GetByID(ctx, in.UserID); getErr == nil {
			return existing, nil
		}
	}
	return nil, models.NewConflictError("Could not allocate a unique username")
}

func (s *ProfileService) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		taken, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := strconv.Itoa(n)
		stem := base
		if len(stem)+len(suffix) > maxUsernameLen {
			stem = stem[:maxUsernameLen-len(suffix)]
		}
		candidate = stem + suffix
	}
}

// usernameBase derives a username from the metadata hint or the email local part.
func usernameBase(hint, email string) string {
	raw := strings.TrimSpace(hint)
	if raw == "" {
		raw, _, _ = strings.Cut(strings.TrimSpace(email), "@")
	}
	name := usernameStrip.ReplaceAllString(strings.ToLower(raw), "")
	if len(name) > maxUsernameLen {
		name = name[:maxUsernameLen]
	}
	if len(name) < minUsernameLen {
		name = "player"
	}
	return name
}

func (s *ProfileService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User", id)
	}
	return user, nil
}

// IsAdmin satisfies AdminChecker.
func (s *ProfileService) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// GetPublicProfile returns a profile with its linked accounts, cached by username.
func (s *ProfileService) GetPublicProfile(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.ProfileKey(username), &user, cache.ProfileTTL, func() error {
		found, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			return notFound(err, "User", username)
		}
		user = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, notFound(err, "User", in.UserID)
	}

	if v := trimPtr(in.DisplayName); v != nil {
		if err := checkLength("display_name", *v, 0, 64); err != nil {
			return nil, err
		}
		user.DisplayName = *v
	}
	if v := trimPtr(in.Bio); v != nil {
		if err := checkLength("bio", *v, 0, 500); err != nil {
			return nil, err
		}
		user.Bio = *v
	}
	if v := trimPtr(in.AvatarURL); v != nil {
		if *v != "" && !isHTTPURL(*v) {
			return nil, models.NewValidationError("avatar_url must be an http(s) URL")
		}
		user.AvatarURL = *v
	}
	if v := trimPtr(in.MinecraftUsername); v != nil {
		if *v != "" && !minecraftNamePattern.MatchString(*v) {
			return nil, models.NewValidationError("minecraft_username must be 3-16 letters, digits or underscores")
		}
		user.MinecraftUsername = *v
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.ProfileKey(user.Username))
	return user, nil
}

func (s *ProfileService) ListLinkedAccounts(ctx context.Context, userID uuid.UUID) ([]models.LinkedAccount, error) {
	return s.links.ListByUser(ctx, userID)
}

// LinkAccount attaches a provider identity. Relinking the same provider replaces the old one.
func (s *ProfileService) LinkAccount(ctx context.Context, in LinkAccountInput) (*models.LinkedAccount, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if !slices.Contains(s.providers, provider) {
		return nil, models.NewValidationError("Unsupported provider")
	}
	externalID := strings.TrimSpace(in.ExternalID)
	if err := checkLength("external_id", externalID, 1, 128); err != nil {
		return nil, err
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if err := checkLength("display_name", displayName, 0, 128); err != nil {
		return nil, err
	}

	existing, err := s.links.FindByExternal(ctx, provider, externalID)
	switch {
	case err == nil && existing.UserID != in.UserID:
		return nil, models.NewConflictError("This account is already linked to another user")
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	account := &models.LinkedAccount{
		UserID:      in.UserID,
		Provider:    provider,
		ExternalID:  externalID,
		DisplayName: displayName,
	}
	if err := s.links.Upsert(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.NewConflictError("This account is already linked to another user")
		}
		return nil, err
	}
	s.invalidateProfile(ctx, in.UserID)
	return account, nil
}

func (s *ProfileService) UnlinkAccount(ctx context.Context, userID uuid.UUID, provider string) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if err := s.links.Delete(ctx, userID, provider); err != nil {
		return notFound(err, "Linked account", provider)
	}
	s.invalidateProfile(ctx, userID)
	return nil
}

func (s *ProfileService) invalidateProfile(ctx context.Context, userID uuid.UUID) {
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		cache.Invalidate(ctx, cache.ProfileKey(user.Username))
	}
}

func isHTTPURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
