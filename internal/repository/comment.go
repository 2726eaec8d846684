package repository

import (
	"context"

	"craftnexus/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByTarget(ctx context.Context, targetType string, targetID uint) ([]*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	HasReplies(ctx context.Context, id uint) (bool, error)
	Tombstone(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
	TargetExists(ctx context.Context, targetType string, targetID uint) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTarget returns the flat comment list for a target, oldest first.
func (r *commentRepository) ListByTarget(ctx context.Context, targetType string, targetID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Model(comment).Select("content").Updates(comment).Error
}

func (r *commentRepository) HasReplies(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("parent_id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *commentRepository) Tombstone(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "content": ""}).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TargetExists checks the commented entity. Only published news accept comments.
func (r *commentRepository) TargetExists(ctx context.Context, targetType string, targetID uint) (bool, error) {
	var count int64
	var err error
	switch targetType {
	case models.CommentTargetNews:
		err = r.db.WithContext(ctx).Model(&models.News{}).Where("id = ? AND published = ?", targetID, true).Count(&count).Error
	case models.CommentTargetMod:
		err = r.db.WithContext(ctx).Model(&models.Mod{}).Where("id = ?", targetID).Count(&count).Error
	}
	return count > 0, err
}
