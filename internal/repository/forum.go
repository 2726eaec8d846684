package repository

import (
	"context"
	"time"

	"craftnexus/internal/models"

	"gorm.io/gorm"
)

// ForumRepository persists categories, threads and posts.
type ForumRepository interface {
	ListCategories(ctx context.Context) ([]models.ForumCategory, error)
	GetCategory(ctx context.Context, slug string) (*models.ForumCategory, error)
	GetCategoryByID(ctx context.Context, id uint) (*models.ForumCategory, error)
	CreateCategory(ctx context.Context, category *models.ForumCategory) error
	UpdateCategory(ctx context.Context, category *models.ForumCategory) error

	ListThreads(ctx context.Context, categoryID uint, page Page) ([]models.ForumThread, int64, error)
	GetThread(ctx context.Context, id uint) (*models.ForumThread, error)
	CreateThread(ctx context.Context, thread *models.ForumThread, first *models.ForumPost) error
	IncrementViews(ctx context.Context, threadID uint) error
	SetThreadFlag(ctx context.Context, threadID uint, column string, value bool) error
	DeleteThread(ctx context.Context, threadID uint) error

	ListPosts(ctx context.Context, threadID uint, page Page) ([]models.ForumPost, int64, error)
	GetPost(ctx context.Context, id uint) (*models.ForumPost, error)
	FirstPostID(ctx context.Context, threadID uint) (uint, error)
	AddReply(ctx context.Context, post *models.ForumPost) error
	UpdatePost(ctx context.Context, post *models.ForumPost) error
	DeletePost(ctx context.Context, post *models.ForumPost) error
}

type forumRepository struct {
	db *gorm.DB
}

// NewForumRepository creates a new ForumRepository
func NewForumRepository(db *gorm.DB) ForumRepository {
	return &forumRepository{db: db}
}

func (r *forumRepository) ListCategories(ctx context.Context) ([]models.ForumCategory, error) {
	var categories []models.ForumCategory
	err := r.db.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *forumRepository) GetCategory(ctx context.Context, slug string) (*models.ForumCategory, error) {
	var category models.ForumCategory
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *forumRepository) GetCategoryByID(ctx context.Context, id uint) (*models.ForumCategory, error) {
	var category models.ForumCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *forumRepository) CreateCategory(ctx context.Context, category *models.ForumCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *forumRepository) UpdateCategory(ctx context.Context, category *models.ForumCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *forumRepository) ListThreads(ctx context.Context, categoryID uint, page Page) ([]models.ForumThread, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ForumThread{}).Where("category_id = ?", categoryID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []models.ForumThread
	err := page.apply(q.Preload("User")).
		Order("pinned DESC").
		Order("last_activity_at DESC").
		Order("id DESC").
		Find(&threads).Error
	return threads, total, err
}

func (r *forumRepository) GetThread(ctx context.Context, id uint) (*models.ForumThread, error) {
	var thread models.ForumThread
	if err := r.db.WithContext(ctx).Preload("User").Preload("Category").First(&thread, id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// CreateThread inserts the thread and its opening post together.
func (r *forumRepository) CreateThread(ctx context.Context, thread *models.ForumThread, first *models.ForumPost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Category").Create(thread).Error; err != nil {
			return err
		}
		first.ThreadID = thread.ID
		return tx.Omit("User").Create(first).Error
	})
}

func (r *forumRepository) IncrementViews(ctx context.Context, threadID uint) error {
	return r.db.WithContext(ctx).Model(&models.ForumThread{}).
		Where("id = ?", threadID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *forumRepository) SetThreadFlag(ctx context.Context, threadID uint, column string, value bool) error {
	res := r.db.WithContext(ctx).Model(&models.ForumThread{}).Where("id = ?", threadID).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *forumRepository) DeleteThread(ctx context.Context, threadID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", threadID).Delete(&models.ForumPost{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.ForumThread{}, threadID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *forumRepository) ListPosts(ctx context.Context, threadID uint, page Page) ([]models.ForumPost, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ForumPost{}).Where("thread_id = ?", threadID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.ForumPost
	err := page.apply(q.Preload("User")).Order("created_at ASC").Order("id ASC").Find(&posts).Error
	return posts, total, err
}

func (r *forumRepository) GetPost(ctx context.Context, id uint) (*models.ForumPost, error) {
	var post models.ForumPost
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *forumRepository) FirstPostID(ctx context.Context, threadID uint) (uint, error) {
	var post models.ForumPost
	err := r.db.WithContext(ctx).Select("id").
		Where("thread_id = ?", threadID).
		Order("created_at ASC").Order("id ASC").
		First(&post).Error
	return post.ID, err
}

// AddReply stores the post and bumps the thread counters in one transaction.
func (r *forumRepository) AddReply(ctx context.Context, post *models.ForumPost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.ForumThread{}).Where("id = ?", post.ThreadID).
			UpdateColumns(map[string]interface{}{
				"reply_count":      gorm.Expr("reply_count + 1"),
				"last_activity_at": post.CreatedAt,
				"updated_at":       time.Now().UTC(),
			}).Error
	})
}

func (r *forumRepository) UpdatePost(ctx context.Context, post *models.ForumPost) error {
	return r.db.WithContext(ctx).Model(post).Select("content", "edited_at").Updates(post).Error
}

// DeletePost removes a reply and decrements the thread reply counter.
func (r *forumRepository) DeletePost(ctx context.Context, post *models.ForumPost) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.ForumPost{}, post.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.ForumThread{}).
			Where("id = ? AND reply_count > 0", post.ThreadID).
			UpdateColumn("reply_count", gorm.Expr("reply_count - 1")).Error
	})
}
