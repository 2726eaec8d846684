package repository

import (
	"context"
	"time"

	"craftnexus/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportRepository persists moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	ExistsOpen(ctx context.Context, reporterID uuid.UUID, targetType string, targetID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, status string, page Page) ([]models.Report, int64, error)
	Resolve(ctx context.Context, id uint, status string, resolvedBy uuid.UUID) error
	ResolveTarget(ctx context.Context, targetType string, targetID uint, status string, resolvedBy uuid.UUID) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) ExistsOpen(ctx context.Context, reporterID uuid.UUID, targetType string, targetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			reporterID, targetType, targetID, models.ReportStatusOpen).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, status string, page Page) ([]models.Report, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := page.apply(q).Order("created_at ASC").Order("id ASC").Find(&reports).Error
	return reports, total, err
}

// Resolve closes one open report. A report that is already closed looks missing.
func (r *reportRepository) Resolve(ctx context.Context, id uint, status string, resolvedBy uuid.UUID) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusOpen).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ResolveTarget closes every other open report against the same content.
func (r *reportRepository) ResolveTarget(ctx context.Context, targetType string, targetID uint, status string, resolvedBy uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&models.Report{}).
		Where("target_type = ? AND target_id = ? AND status = ?", targetType, targetID, models.ReportStatusOpen).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_by": resolvedBy,
			"resolved_at": now,
			"updated_at":  now,
		}).Error
}
