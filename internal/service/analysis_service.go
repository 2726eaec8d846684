package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"craftnexus/internal/cache"
	"craftnexus/internal/featureflags"
	"craftnexus/internal/imaging"
	"craftnexus/internal/models"
	"craftnexus/internal/observability"
	"craftnexus/internal/repository"
	"craftnexus/internal/storage"

	"github.com/google/uuid"
)

// FeatureWeaponAnalysis gates uploads when it appears in FEATURE_FLAGS.
const FeatureWeaponAnalysis = "weapon_analysis"

// DefaultAnalysisMaxUploadBytes applies when no upload limit is configured.
const DefaultAnalysisMaxUploadBytes = 8 * 1024 * 1024

// SubmitAnalysisInput is one uploaded image.
type SubmitAnalysisInput struct {
	UserID  uuid.UUID
	Content []byte
}

// AnalysisService accepts uploads and serves job state to pollers.
type AnalysisService struct {
	jobs     repository.AnalysisJobRepository
	store    storage.ObjectStore
	flags    *featureflags.Manager
	isAdmin  AdminChecker
	maxBytes int64
	wake     func()
}

// NewAnalysisService creates an AnalysisService. flags may be nil.
func NewAnalysisService(
	jobs repository.AnalysisJobRepository,
	store storage.ObjectStore,
	flags *featureflags.Manager,
	isAdmin AdminChecker,
	maxBytes int64,
) *AnalysisService {
	if maxBytes <= 0 {
		maxBytes = DefaultAnalysisMaxUploadBytes
	}
	return &AnalysisService{
		jobs:     jobs,
		store:    store,
		flags:    flags,
		isAdmin:  isAdmin,
		maxBytes: maxBytes,
	}
}

// SetWaker registers the callback used to wake idle workers after a submit.
func (s *AnalysisService) SetWaker(wake func()) {
	s.wake = wake
}

// Submit validates and stores the image, then queues a pending job.
func (s *AnalysisService) Submit(ctx context.Context, in SubmitAnalysisInput) (*models.WeaponAnalysisJob, error) {
	if in.UserID == uuid.Nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if s.flags != nil && !s.flags.Allows(FeatureWeaponAnalysis, in.UserID) {
		return nil, models.NewForbiddenError("Weapon analysis is not enabled for this account")
	}

	norm, err := imaging.Normalize(in.Content, s.maxBytes)
	if err != nil {
		return nil, s.uploadError(err)
	}

	imageKey := "analysis/" + norm.Hash + ".jpg"
	previewKey := "analysis/" + norm.Hash + ".webp"
	if err := s.store.Put(ctx, imageKey, norm.JPEG); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("store image: %w", err))
	}
	if err := s.store.Put(ctx, previewKey, norm.Preview); err != nil {
		slog.WarnContext(ctx, "failed to store analysis preview", slog.String("key", previewKey), slog.String("error", err.Error()))
		previewKey = ""
	}

	job := &models.WeaponAnalysisJob{
		UserID:     in.UserID,
		Status:     models.AnalysisPending,
		ImageKey:   imageKey,
		PreviewKey: previewKey,
		MimeType:   "image/jpeg",
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	observability.AnalysisJobsSubmitted.Inc()

	if s.wake != nil {
		s.wake()
	}
	return job, nil
}

func (s *AnalysisService) uploadError(err error) error {
	switch {
	case errors.Is(err, imaging.ErrEmpty):
		return models.NewValidationError("No file uploaded")
	case errors.Is(err, imaging.ErrTooLarge):
		return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	case errors.Is(err, imaging.ErrUnsupportedType):
		return models.NewValidationError("Invalid image type")
	case errors.Is(err, imaging.ErrTooManyPixels):
		return models.NewValidationError(fmt.Sprintf("Image dimensions too large (max %d megapixels)", imaging.MaxSourcePixels/1_000_000))
	case errors.Is(err, imaging.ErrUndecodable):
		return models.NewValidationError("Invalid image file")
	}
	return models.NewInternalError(err)
}

// Get returns a job to its owner or an admin. Everyone else gets not found so
// job ids cannot be probed.
func (s *AnalysisService) Get(ctx context.Context, actor, id uuid.UUID) (*models.WeaponAnalysisJob, error) {
	key := cache.AnalysisJobKey(id)

	var cached models.WeaponAnalysisJob
	if found, err := cache.GetJSON(ctx, key, &cached); err == nil && found {
		observability.CacheLookups.WithLabelValues("analysis", "hit").Inc()
		if err := s.ensureVisible(ctx, actor, &cached); err != nil {
			return nil, err
		}
		return &cached, nil
	}
	observability.CacheLookups.WithLabelValues("analysis", "miss").Inc()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Analysis job", id)
	}
	if err := s.ensureVisible(ctx, actor, job); err != nil {
		return nil, err
	}
	if job.IsTerminal() {
		_ = cache.SetJSON(ctx, key, job, cache.AnalysisJobTTL)
	}
	return job, nil
}

func (s *AnalysisService) ensureVisible(ctx context.Context, actor uuid.UUID, job *models.WeaponAnalysisJob) error {
	if err := ensureOwnerOrAdmin(ctx, s.isAdmin, actor, job.UserID, "not yours"); err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return models.NewNotFoundError("Analysis job", job.ID)
		}
		return err
	}
	return nil
}

// List returns the caller's jobs, newest first.
func (s *AnalysisService) List(ctx context.Context, userID uuid.UUID, page PageInput) ([]models.WeaponAnalysisJob, int64, error) {
	return s.jobs.ListByUser(ctx, userID, page.repo())
}

// Preview returns the stored WebP preview of a job's image.
func (s *AnalysisService) Preview(ctx context.Context, actor, id uuid.UUID) ([]byte, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Analysis job", id)
	}
	if err := s.ensureVisible(ctx, actor, job); err != nil {
		return nil, err
	}
	if job.PreviewKey == "" {
		return nil, models.NewNotFoundError("Preview", id)
	}
	data, err := s.store.Get(ctx, job.PreviewKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, models.NewNotFoundError("Preview", id)
	}
	return data, err
}
