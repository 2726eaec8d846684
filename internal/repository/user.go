// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"craftnexus/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines profile persistence.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetBan(ctx context.Context, id uuid.UUID, banned bool, reason string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("LinkedAccounts", func(db *gorm.DB) *gorm.DB { return db.Order("provider ASC") }).
		Where("LOWER(username) = LOWER(?)", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", username).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		return errors.New("user id is required")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Model(user).Select(
		"display_name", "bio", "avatar_url", "minecraft_username", "email",
	).Updates(user).Error
}

func (r *userRepository) SetBan(ctx context.Context, id uuid.UUID, banned bool, reason string) error {
	updates := map[string]interface{}{
		"is_banned":  banned,
		"ban_reason": reason,
		"banned_at":  nil,
	}
	if banned {
		updates["banned_at"] = time.Now().UTC()
	} else {
		updates["ban_reason"] = ""
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
