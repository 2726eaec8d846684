package repository

import (
	"context"

	"craftnexus/internal/models"

	"gorm.io/gorm"
)

// TickerRepository persists ticker lines and their display order.
type TickerRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.TickerItem, error)
	GetByID(ctx context.Context, id uint) (*models.TickerItem, error)
	Create(ctx context.Context, item *models.TickerItem) error
	Update(ctx context.Context, item *models.TickerItem) error
	Delete(ctx context.Context, id uint) error
	NextPosition(ctx context.Context) (int, error)
	Reorder(ctx context.Context, ids []uint) error
}

type tickerRepository struct {
	db *gorm.DB
}

// NewTickerRepository creates a new TickerRepository
func NewTickerRepository(db *gorm.DB) TickerRepository {
	return &tickerRepository{db: db}
}

func (r *tickerRepository) List(ctx context.Context, activeOnly bool) ([]models.TickerItem, error) {
	q := r.db.WithContext(ctx).Order("position ASC").Order("id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var items []models.TickerItem
	err := q.Find(&items).Error
	return items, err
}

func (r *tickerRepository) GetByID(ctx context.Context, id uint) (*models.TickerItem, error) {
	var item models.TickerItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *tickerRepository) Create(ctx context.Context, item *models.TickerItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *tickerRepository) Update(ctx context.Context, item *models.TickerItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *tickerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.TickerItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tickerRepository) NextPosition(ctx context.Context) (int, error) {
	var maxPos *int
	err := r.db.WithContext(ctx).Model(&models.TickerItem{}).Select("MAX(position)").Scan(&maxPos).Error
	if err != nil || maxPos == nil {
		return 0, err
	}
	return *maxPos + 1, nil
}

// Reorder assigns positions 0..n-1 following ids. The caller guarantees ids is a
// permutation of all stored ids.
func (r *tickerRepository) Reorder(ctx context.Context, ids []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for pos, id := range ids {
			if err := tx.Model(&models.TickerItem{}).Where("id = ?", id).Update("position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
