package service

import (
	"context"
	"log/slog"
	"strings"

	"craftnexus/internal/models"
	"craftnexus/internal/notifications"
	"craftnexus/internal/repository"

	"github.com/google/uuid"
)

// EventPublisher pushes realtime events to a user's sockets.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, userID uuid.UUID, eventType string, payload any) error
}

// NotifyInput describes one notification to create.
type NotifyInput struct {
	UserID uuid.UUID
	Type   string
	Title  string
	Body   string
	Link   string
}

// ListNotificationsInput selects a page of a user's notifications.
type ListNotificationsInput struct {
	UserID      uuid.UUID
	UnreadFirst bool
	PageInput
}

// NotificationService stores notifications and pushes them over pub/sub.
type NotificationService struct {
	repo      repository.NotificationRepository
	publisher EventPublisher
}

// NewNotificationService returns a NotificationService. publisher may be nil.
func NewNotificationService(repo repository.NotificationRepository, publisher EventPublisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Notify stores the notification and pushes it to the user's live sockets.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) (*models.Notification, error) {
	if in.UserID == uuid.Nil {
		return nil, models.NewValidationError("Notification recipient is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Notification title is required")
	}
	n := &models.Notification{
		UserID: in.UserID,
		Type:   in.Type,
		Title:  truncateRunes(title, 200),
		Body:   truncateRunes(in.Body, 1000),
		Link:   in.Link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishUserEvent(ctx, n.UserID, notifications.EventNotification, n); err != nil {
			slog.WarnContext(ctx, "failed to publish notification", slog.Uint64("notification_id", uint64(n.ID)), slog.String("error", err.Error()))
		}
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, in ListNotificationsInput) ([]models.Notification, int64, error) {
	return s.repo.ListByUser(ctx, in.UserID, in.UnreadFirst, in.repo())
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, id uint) error {
	return notFound(s.repo.MarkRead(ctx, userID, id), "Notification", id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
