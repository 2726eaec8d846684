// Package service implements the business rules behind the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"craftnexus/internal/models"
	"craftnexus/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminChecker reports whether a user holds the admin role.
type AdminChecker func(ctx context.Context, userID uuid.UUID) (bool, error)

// Notifier creates in-app notifications. Implemented by NotificationService.
type Notifier interface {
	Notify(ctx context.Context, in NotifyInput) (*models.Notification, error)
}

// PageInput is the limit/offset window requested by a caller.
type PageInput struct {
	Limit  int
	Offset int
}

func (p PageInput) repo() repository.Page {
	return repository.Page{Limit: p.Limit, Offset: p.Offset}
}

// ensureOwnerOrAdmin returns a forbidden error unless actor owns the resource or is an admin.
func ensureOwnerOrAdmin(ctx context.Context, isAdmin AdminChecker, actor, owner uuid.UUID, message string) error {
	if actor == owner {
		return nil
	}
	if isAdmin == nil {
		return models.NewForbiddenError(message)
	}
	admin, err := isAdmin(ctx, actor)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError(message)
	}
	return nil
}

// notifyQuietly delivers a notification and only logs failures; the triggering
// write has already succeeded.
func notifyQuietly(ctx context.Context, n Notifier, in NotifyInput) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, in); err != nil {
		slog.WarnContext(ctx, "failed to create notification",
			slog.String("type", in.Type),
			slog.String("user_id", in.UserID.String()),
			slog.String("error", err.Error()),
		)
	}
}

func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

// checkLength validates the rune length of an already trimmed field.
func checkLength(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n == 0 && minLen > 0 {
		return models.NewValidationError(field + " is required")
	}
	if n < minLen || (maxLen > 0 && n > maxLen) {
		return models.NewValidationError(fmt.Sprintf("%s must be between %d and %d characters", field, minLen, maxLen))
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
