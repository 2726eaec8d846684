package repository

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"craftnexus/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxJobErrorLength bounds the error text stored on a failed job.
const MaxJobErrorLength = 4000

// ErrJobNotClaimed is returned when a terminal write targets a job that is no
// longer processing, for example after the stale sweep failed it.
var ErrJobNotClaimed = errors.New("analysis job is not processing")

// AnalysisJobRepository persists weapon analysis jobs and implements the claim queue.
type AnalysisJobRepository interface {
	Create(ctx context.Context, job *models.WeaponAnalysisJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WeaponAnalysisJob, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]models.WeaponAnalysisJob, int64, error)
	ClaimNextPending(ctx context.Context) (*models.WeaponAnalysisJob, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, result *models.WeaponStats) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	FailStaleProcessing(ctx context.Context, olderThan time.Duration, reason string) ([]models.WeaponAnalysisJob, error)
}

type analysisJobRepository struct {
	db *gorm.DB
}

// NewAnalysisJobRepository creates a new AnalysisJobRepository
func NewAnalysisJobRepository(db *gorm.DB) AnalysisJobRepository {
	return &analysisJobRepository{db: db}
}

func (r *analysisJobRepository) Create(ctx context.Context, job *models.WeaponAnalysisJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.AnalysisPending
	}
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *analysisJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WeaponAnalysisJob, error) {
	var job models.WeaponAnalysisJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *analysisJobRepository) ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]models.WeaponAnalysisJob, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WeaponAnalysisJob{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.WeaponAnalysisJob
	err := page.apply(q).Order("created_at DESC").Find(&jobs).Error
	return jobs, total, err
}

// ClaimNextPending moves the oldest pending job to processing. Concurrent
// workers never receive the same job. Returns gorm.ErrRecordNotFound when the
// queue is empty.
func (r *analysisJobRepository) ClaimNextPending(ctx context.Context) (*models.WeaponAnalysisJob, error) {
	now := time.Now().UTC()
	if r.db.Name() == "postgres" {
		var claimed models.WeaponAnalysisJob
		err := r.db.WithContext(ctx).Raw(`
WITH picked AS (
	SELECT id
	FROM weapon_analysis_jobs
	WHERE status = ?
	ORDER BY created_at, id
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
UPDATE weapon_analysis_jobs j
SET status = ?,
    started_at = ?,
    updated_at = ?,
    error = ''
FROM picked
WHERE j.id = picked.id
RETURNING j.*
`, models.AnalysisPending, models.AnalysisProcessing, now, now).Scan(&claimed).Error
		if err != nil {
			return nil, err
		}
		if claimed.ID == uuid.Nil {
			return nil, gorm.ErrRecordNotFound
		}
		return &claimed, nil
	}

	// SQLite serializes writers, so a guarded update is enough.
	var claimed models.WeaponAnalysisJob
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ?", models.AnalysisPending).
			Order("created_at ASC").Order("id ASC").
			First(&claimed).Error; err != nil {
			return err
		}
		res := tx.Model(&models.WeaponAnalysisJob{}).
			Where("id = ? AND status = ?", claimed.ID, models.AnalysisPending).
			Updates(map[string]interface{}{
				"status":     models.AnalysisProcessing,
				"started_at": now,
				"updated_at": now,
				"error":      "",
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", claimed.ID).First(&claimed).Error
	})
	if err != nil {
		return nil, err
	}
	return &claimed, nil
}

func (r *analysisJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, result *models.WeaponStats) error {
	now := time.Now().UTC()
	return r.finish(ctx, id, &models.WeaponAnalysisJob{
		Status:      models.AnalysisCompleted,
		Result:      result,
		CompletedAt: &now,
		UpdatedAt:   now,
	}, "status", "result", "error", "completed_at", "updated_at")
}

func (r *analysisJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	now := time.Now().UTC()
	return r.finish(ctx, id, &models.WeaponAnalysisJob{
		Status:      models.AnalysisFailed,
		Error:       TruncateJobError(errMsg),
		CompletedAt: &now,
		UpdatedAt:   now,
	}, "status", "error", "completed_at", "updated_at")
}

func (r *analysisJobRepository) finish(ctx context.Context, id uuid.UUID, values *models.WeaponAnalysisJob, columns ...string) error {
	res := r.db.WithContext(ctx).Model(&models.WeaponAnalysisJob{}).
		Where("id = ? AND status = ?", id, models.AnalysisProcessing).
		Select(columns).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrJobNotClaimed
	}
	return nil
}

// FailStaleProcessing fails jobs stuck in processing since before the cutoff
// and returns the jobs it actually transitioned.
func (r *analysisJobRepository) FailStaleProcessing(ctx context.Context, olderThan time.Duration, reason string) ([]models.WeaponAnalysisJob, error) {
	if olderThan <= 0 {
		return nil, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().UTC().Add(-olderThan)

	var stale []models.WeaponAnalysisJob
	if err := r.db.WithContext(ctx).
		Where("status = ? AND started_at IS NOT NULL AND started_at < ?", models.AnalysisProcessing, cutoff).
		Order("started_at ASC").
		Find(&stale).Error; err != nil {
		return nil, err
	}

	failed := make([]models.WeaponAnalysisJob, 0, len(stale))
	for _, job := range stale {
		err := r.MarkFailed(ctx, job.ID, reason)
		if errors.Is(err, ErrJobNotClaimed) {
			continue
		}
		if err != nil {
			return failed, err
		}
		job.Status = models.AnalysisFailed
		job.Error = TruncateJobError(reason)
		failed = append(failed, job)
	}
	return failed, nil
}

// TruncateJobError caps msg at MaxJobErrorLength runes.
func TruncateJobError(msg string) string {
	if utf8.RuneCountInString(msg) <= MaxJobErrorLength {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:MaxJobErrorLength])
}
