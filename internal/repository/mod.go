package repository

import (
	"context"
	"strings"

	"craftnexus/internal/models"

	"gorm.io/gorm"
)

// Mod list sort orders.
const (
	ModSortDownloads = "downloads"
	ModSortUpdated   = "updated"
	ModSortName      = "name"
)

// ModFilter narrows a catalog listing.
type ModFilter struct {
	Query    string
	Category string
	Loader   string
	Version  string
	Sort     string
}

// ModImportResult counts the rows touched by a bulk import.
type ModImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ModRepository persists the mod catalog.
type ModRepository interface {
	Create(ctx context.Context, mod *models.Mod) error
	Update(ctx context.Context, mod *models.Mod) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Mod, error)
	GetBySlug(ctx context.Context, slug string) (*models.Mod, error)
	SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error)
	List(ctx context.Context, filter ModFilter, page Page) ([]models.Mod, int64, error)
	Import(ctx context.Context, creates, updates []*models.Mod) (ModImportResult, error)
	FindByExternal(ctx context.Context, source string, externalIDs []string) (map[string]*models.Mod, error)
	AllSlugs(ctx context.Context) (map[string]bool, error)
}

type modRepository struct {
	db *gorm.DB
}

// NewModRepository creates a new ModRepository
func NewModRepository(db *gorm.DB) ModRepository {
	return &modRepository{db: db}
}

func (r *modRepository) Create(ctx context.Context, mod *models.Mod) error {
	return r.db.WithContext(ctx).Create(mod).Error
}

func (r *modRepository) Update(ctx context.Context, mod *models.Mod) error {
	return r.db.WithContext(ctx).Save(mod).Error
}

func (r *modRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Mod{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("target_type = ? AND target_id = ?", models.CommentTargetMod, id).
			Delete(&models.Comment{}).Error
	})
}

func (r *modRepository) GetByID(ctx context.Context, id uint) (*models.Mod, error) {
	var mod models.Mod
	if err := r.db.WithContext(ctx).First(&mod, id).Error; err != nil {
		return nil, err
	}
	return &mod, nil
}

func (r *modRepository) GetBySlug(ctx context.Context, slug string) (*models.Mod, error) {
	var mod models.Mod
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&mod).Error; err != nil {
		return nil, err
	}
	return &mod, nil
}

func (r *modRepository) SlugTaken(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Mod{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *modRepository) List(ctx context.Context, filter ModFilter, page Page) ([]models.Mod, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Mod{})
	if filter.Query != "" {
		p := likePattern(filter.Query)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(summary) LIKE ? ESCAPE '\')`, p, p)
	}
	if filter.Category != "" {
		q = listContains(q, "categories", filter.Category)
	}
	if filter.Loader != "" {
		q = listContains(q, "loaders", filter.Loader)
	}
	if filter.Version != "" {
		q = listContains(q, "game_versions", filter.Version)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch strings.ToLower(filter.Sort) {
	case ModSortUpdated:
		q = q.Order("updated_at DESC")
	case ModSortName:
		q = q.Order("LOWER(name) ASC")
	default:
		q = q.Order("downloads DESC")
	}

	var mods []models.Mod
	err := page.apply(q).Order("id ASC").Find(&mods).Error
	return mods, total, err
}

// FindByExternal returns the existing mods of one source keyed by external id.
func (r *modRepository) FindByExternal(ctx context.Context, source string, externalIDs []string) (map[string]*models.Mod, error) {
	out := make(map[string]*models.Mod, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}
	var mods []*models.Mod
	if err := r.db.WithContext(ctx).
		Where("source = ? AND external_id IN ?", source, externalIDs).
		Find(&mods).Error; err != nil {
		return nil, err
	}
	for _, m := range mods {
		if m.ExternalID != nil {
			out[*m.ExternalID] = m
		}
	}
	return out, nil
}

func (r *modRepository) AllSlugs(ctx context.Context) (map[string]bool, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).Model(&models.Mod{}).Pluck("slug", &slugs).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		out[s] = true
	}
	return out, nil
}

// Import writes a prepared batch of new and changed mods atomically.
func (r *modRepository) Import(ctx context.Context, creates, updates []*models.Mod) (ModImportResult, error) {
	var result ModImportResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range creates {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		for _, m := range updates {
			if err := tx.Save(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ModImportResult{}, err
	}
	result.Created = len(creates)
	result.Updated = len(updates)
	return result, nil
}
