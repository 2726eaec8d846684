package service

import (
	"context"
	"strings"
	"testing"

	"craftnexus/internal/featureflags"
	"craftnexus/internal/models"
	"craftnexus/internal/repository"
	"craftnexus/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func adminSet(ids ...uuid.UUID) AdminChecker {
	return func(_ context.Context, id uuid.UUID) (bool, error) {
		for _, admin := range ids {
			if admin == id {
				return true, nil
			}
		}
		return false, nil
	}
}

type analysisFixture struct {
	db    *gorm.DB
	jobs  repository.AnalysisJobRepository
	store *testutil.MemoryStore
	svc   *AnalysisService
	owner *models.User
	other *models.User
	admin *models.User
}

func newAnalysisFixture(t *testing.T, flags *featureflags.Manager) *analysisFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	f := &analysisFixture{
		db:    db,
		jobs:  repository.NewAnalysisJobRepository(db),
		store: testutil.NewMemoryStore(),
		owner: testutil.CreateUser(t, db, "steve", false),
		other: testutil.CreateUser(t, db, "alex", false),
		admin: testutil.CreateUser(t, db, "notch", true),
	}
	f.svc = NewAnalysisService(f.jobs, f.store, flags, adminSet(f.admin.ID), 2*1024*1024)
	return f
}

func TestAnalysisService_SubmitQueuesPendingJob(t *testing.T) {
	f := newAnalysisFixture(t, nil)
	ctx := context.Background()

	woken := 0
	f.svc.SetWaker(func() { woken++ })

	job, err := f.svc.Submit(ctx, SubmitAnalysisInput{UserID: f.owner.ID, Content: testutil.PNG(t, 64, 48)})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, models.AnalysisPending, job.Status)
	assert.Equal(t, "image/jpeg", job.MimeType)
	assert.True(t, strings.HasPrefix(job.ImageKey, "analysis/"))
	assert.True(t, strings.HasSuffix(job.PreviewKey, ".webp"))
	assert.Equal(t, 1, woken)

	assert.ElementsMatch(t, []string{job.ImageKey, job.PreviewKey}, f.store.Keys())

	stored, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisPending, stored.Status)
	assert.Equal(t, f.owner.ID, stored.UserID)
}

func TestAnalysisService_SubmitRejectsBadUploads(t *testing.T) {
	f := newAnalysisFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		content []byte
		message string
	}{
		{"empty", nil, "No file uploaded"},
		{"not an image", []byte("plain text that is not an image"), "Invalid image type"},
		{"too large", append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 3*1024*1024)...), "File too large (max 2MB)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, SubmitAnalysisInput{UserID: f.owner.ID, Content: tt.content})
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeValidation))
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.WeaponAnalysisJob{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.store.Keys())
}

func TestAnalysisService_SubmitHonoursFeatureFlag(t *testing.T) {
	f := newAnalysisFixture(t, featureflags.NewManager("weapon_analysis=off"))

	_, err := f.svc.Submit(context.Background(), SubmitAnalysisInput{UserID: f.owner.ID, Content: testutil.PNG(t, 16, 16)})
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeForbidden))
}

func TestAnalysisService_GetVisibility(t *testing.T) {
	f := newAnalysisFixture(t, nil)
	ctx := context.Background()

	job, err := f.svc.Submit(ctx, SubmitAnalysisInput{UserID: f.owner.ID, Content: testutil.PNG(t, 16, 16)})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.owner.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	got, err = f.svc.Get(ctx, f.admin.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	_, err = f.svc.Get(ctx, f.other.ID, job.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = f.svc.Get(ctx, f.owner.ID, uuid.New())
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestAnalysisService_ListAndPreview(t *testing.T) {
	f := newAnalysisFixture(t, nil)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, SubmitAnalysisInput{UserID: f.owner.ID, Content: testutil.PNG(t, 20, 20)})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, SubmitAnalysisInput{UserID: f.owner.ID, Content: testutil.PNG(t, 30, 30)})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, SubmitAnalysisInput{UserID: f.other.ID, Content: testutil.PNG(t, 40, 40)})
	require.NoError(t, err)

	jobs, total, err := f.svc.List(ctx, f.owner.ID, PageInput{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, jobs, 2)

	preview, err := f.svc.Preview(ctx, f.owner.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(preview[:4]))

	_, err = f.svc.Preview(ctx, f.other.ID, first.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
