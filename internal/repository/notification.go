package repository

import (
	"context"
	"time"

	"craftnexus/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadFirst bool, page Page) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id uint) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadFirst bool, page Page) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if unreadFirst {
		q = q.Order("CASE WHEN read_at IS NULL THEN 0 ELSE 1 END")
	}

	var items []models.Notification
	err := page.apply(q).Order("created_at DESC").Order("id DESC").Find(&items).Error
	return items, total, err
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// MarkRead is scoped to the owner so other users' ids look missing.
func (r *notificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, id uint) error {
	var n models.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return err
	}
	if n.ReadAt != nil {
		return nil
	}
	return r.db.WithContext(ctx).Model(&n).Update("read_at", time.Now().UTC()).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now().UTC())
	return res.RowsAffected, res.Error
}
