package repository

import (
	"context"
	"errors"

	"craftnexus/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkedAccountRepository persists third-party identities attached to profiles.
type LinkedAccountRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LinkedAccount, error)
	FindByExternal(ctx context.Context, provider, externalID string) (*models.LinkedAccount, error)
	Upsert(ctx context.Context, account *models.LinkedAccount) error
	Delete(ctx context.Context, userID uuid.UUID, provider string) error
}

type linkedAccountRepository struct {
	db *gorm.DB
}

// NewLinkedAccountRepository creates a new LinkedAccountRepository
func NewLinkedAccountRepository(db *gorm.DB) LinkedAccountRepository {
	return &linkedAccountRepository{db: db}
}

func (r *linkedAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LinkedAccount, error) {
	var accounts []models.LinkedAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("provider ASC").Find(&accounts).Error
	return accounts, err
}

func (r *linkedAccountRepository) FindByExternal(ctx context.Context, provider, externalID string) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	err := r.db.WithContext(ctx).
		Where("provider = ? AND external_id = ?", provider, externalID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Upsert replaces the user's existing link for the same provider.
func (r *linkedAccountRepository) Upsert(ctx context.Context, account *models.LinkedAccount) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_id", "display_name", "updated_at"}),
	}).Create(account).Error
}

func (r *linkedAccountRepository) Delete(ctx context.Context, userID uuid.UUID, provider string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.LinkedAccount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsUniqueViolation reports whether err came from a unique index on either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return containsAny(msg, "UNIQUE constraint failed", "duplicate key value", "SQLSTATE 23505")
}
