// Package middleware provides HTTP middleware shared by the API routes.
package middleware

import (
	"errors"
	"strings"

	"craftnexus/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// TokenClaims is the claim set issued by the identity provider.
type TokenClaims struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// Identity is what the API learns about a caller from a verified token.
type Identity struct {
	UserID       uuid.UUID
	Email        string
	UsernameHint string
}

var (
	errMissingToken   = errors.New("authorization header required")
	errHeaderFormat   = errors.New("invalid authorization header format")
	errInvalidToken   = errors.New("invalid or expired token")
	errInvalidSubject = errors.New("invalid user ID in token")
)

// ParseToken validates an HS256 token and returns the caller identity.
func ParseToken(tokenString string) (*Identity, error) {
	if cfg == nil {
		return nil, errors.New("auth middleware not initialized")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.JWTAudience))
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, errInvalidSubject
	}

	identity := &Identity{UserID: userID, Email: claims.Email}
	if name, ok := claims.UserMetadata["username"].(string); ok {
		identity.UsernameHint = strings.TrimSpace(name)
	}
	return identity, nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errHeaderFormat
	}
	return parts[1], nil
}

func setIdentity(c *fiber.Ctx, identity *Identity) {
	c.Locals("userID", identity.UserID)
	c.Locals("identity", identity)
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	identity, err := ParseToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	setIdentity(c, identity)
	return c.Next()
}

// OptionalAuth records the caller identity when a valid token is present and
// lets anonymous requests through untouched.
func OptionalAuth(c *fiber.Ctx) error {
	tokenString, err := bearerToken(c)
	if err != nil {
		return c.Next()
	}
	if identity, err := ParseToken(tokenString); err == nil {
		setIdentity(c, identity)
	}
	return c.Next()
}

// WebSocketAuthRequired validates JWT tokens from the query string for WebSocket
// upgrades, falling back to the Authorization header.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		var err error
		tokenString, err = bearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token required"})
		}
	}

	identity, err := ParseToken(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	setIdentity(c, identity)
	return c.Next()
}

// IdentityFrom returns the identity stored by the auth middleware, if any.
func IdentityFrom(c *fiber.Ctx) (*Identity, bool) {
	identity, ok := c.Locals("identity").(*Identity)
	return identity, ok && identity != nil
}
