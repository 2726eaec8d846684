package repository

import (
	"context"

	"craftnexus/internal/models"

	"gorm.io/gorm"
)

// NewsFilter narrows article listings.
type NewsFilter struct {
	Category      string
	Query         string
	FeaturedOnly  bool
	PublishedOnly bool
}

// NewsRepository defines article persistence.
type NewsRepository interface {
	Create(ctx context.Context, news *models.News) error
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.News, error)
	GetBySlug(ctx context.Context, slug string) (*models.News, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	List(ctx context.Context, filter NewsFilter, page Page) ([]models.News, int64, error)
}

type newsRepository struct {
	db *gorm.DB
}

// NewNewsRepository creates a new NewsRepository
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, news *models.News) error {
	return r.db.WithContext(ctx).Create(news).Error
}

func (r *newsRepository) Update(ctx context.Context, news *models.News) error {
	return r.db.WithContext(ctx).Omit("Author").Save(news).Error
}

// Delete removes the article together with its comments.
func (r *newsRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.News{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("target_type = ? AND target_id = ?", models.CommentTargetNews, id).
			Delete(&models.Comment{}).Error
	})
}

func (r *newsRepository) GetByID(ctx context.Context, id uint) (*models.News, error) {
	var news models.News
	if err := r.db.WithContext(ctx).Preload("Author").First(&news, id).Error; err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *newsRepository) GetBySlug(ctx context.Context, slug string) (*models.News, error) {
	var news models.News
	if err := r.db.WithContext(ctx).Preload("Author").Where("slug = ?", slug).First(&news).Error; err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *newsRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.News{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *newsRepository) List(ctx context.Context, filter NewsFilter, page Page) ([]models.News, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.News{})
	if filter.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.FeaturedOnly {
		q = q.Where("featured = ?", true)
	}
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(summary) LIKE ? ESCAPE '\\')", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.News
	err := page.apply(q.Preload("Author")).
		Order("published_at DESC NULLS LAST").
		Order("created_at DESC").
		Find(&items).Error
	return items, total, err
}
