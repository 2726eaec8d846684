package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"craftnexus/internal/models"
	"craftnexus/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newJob(t *testing.T, repo AnalysisJobRepository, userID uuid.UUID, createdAt time.Time) *models.WeaponAnalysisJob {
	t.Helper()
	job := &models.WeaponAnalysisJob{
		UserID:    userID,
		ImageKey:  "analysis/" + uuid.NewString() + ".jpg",
		MimeType:  "image/jpeg",
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), job))
	return job
}

func TestAnalysisJobRepository_ClaimOldestFirst(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnalysisJobRepository(db)
	user := testutil.CreateUser(t, db, "steve", false)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	second := newJob(t, repo, user.ID, base.Add(2*time.Second))
	first := newJob(t, repo, user.ID, base)

	claimed, err := repo.ClaimNextPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, claimed.ID)
	assert.Equal(t, models.AnalysisProcessing, claimed.Status)
	require.NotNil(t, claimed.StartedAt)

	claimed, err = repo.ClaimNextPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, claimed.ID)

	_, err = repo.ClaimNextPending(ctx)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAnalysisJobRepository_ConcurrentClaimsNeverShareAJob(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnalysisJobRepository(db)
	user := testutil.CreateUser(t, db, "alex", false)

	const jobs = 6
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < jobs; i++ {
		newJob(t, repo, user.ID, base.Add(time.Duration(i)*time.Second))
	}

	var (
		mu   sync.Mutex
		seen = map[uuid.UUID]int{}
		wg   sync.WaitGroup
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, err := repo.ClaimNextPending(context.Background())
				if err != nil {
					return
				}
				mu.Lock()
				seen[job.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, jobs)
	for id, n := range seen {
		assert.Equal(t, 1, n, "job %s claimed more than once", id)
	}
}

func TestAnalysisJobRepository_TerminalWritesRequireProcessing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnalysisJobRepository(db)
	user := testutil.CreateUser(t, db, "herobrine", false)
	ctx := context.Background()

	job := newJob(t, repo, user.ID, time.Now().UTC())

	// pending jobs cannot be finished
	assert.ErrorIs(t, repo.MarkCompleted(ctx, job.ID, &models.WeaponStats{Name: "x"}), ErrJobNotClaimed)

	_, err := repo.ClaimNextPending(ctx)
	require.NoError(t, err)

	damage := 7.5
	require.NoError(t, repo.MarkCompleted(ctx, job.ID, &models.WeaponStats{Name: "Netherite Sword", Damage: &damage}))

	stored, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisCompleted, stored.Status)
	require.NotNil(t, stored.Result)
	assert.Equal(t, "Netherite Sword", stored.Result.Name)
	require.NotNil(t, stored.Result.Damage)
	assert.InDelta(t, 7.5, *stored.Result.Damage, 0.0001)
	assert.NotNil(t, stored.CompletedAt)

	assert.ErrorIs(t, repo.MarkFailed(ctx, job.ID, "late failure"), ErrJobNotClaimed)
}

func TestAnalysisJobRepository_MarkFailedTruncatesError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnalysisJobRepository(db)
	user := testutil.CreateUser(t, db, "notch", false)
	ctx := context.Background()

	job := newJob(t, repo, user.ID, time.Now().UTC())
	_, err := repo.ClaimNextPending(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, job.ID, strings.Repeat("e", MaxJobErrorLength+250)))

	stored, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisFailed, stored.Status)
	assert.Len(t, stored.Error, MaxJobErrorLength)
	assert.Nil(t, stored.Result)
}

func TestAnalysisJobRepository_FailStaleProcessing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnalysisJobRepository(db)
	user := testutil.CreateUser(t, db, "jeb", false)
	ctx := context.Background()

	stale := newJob(t, repo, user.ID, time.Now().UTC().Add(-time.Hour))
	fresh := newJob(t, repo, user.ID, time.Now().UTC().Add(-30*time.Minute))
	pending := newJob(t, repo, user.ID, time.Now().UTC())

	_, err := repo.ClaimNextPending(ctx)
	require.NoError(t, err)
	_, err = repo.ClaimNextPending(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.WeaponAnalysisJob{}).
		Where("id = ?", stale.ID).
		Update("started_at", time.Now().UTC().Add(-20*time.Minute)).Error)

	failed, err := repo.FailStaleProcessing(ctx, 10*time.Minute, "analysis timed out")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, stale.ID, failed[0].ID)
	assert.Equal(t, user.ID, failed[0].UserID)

	got, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisFailed, got.Status)
	assert.Equal(t, "analysis timed out", got.Error)

	got, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisProcessing, got.Status)

	got, err = repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisPending, got.Status)

	_, err = repo.FailStaleProcessing(ctx, 0, "x")
	assert.Error(t, err)
}

func TestAnalysisJobRepository_ListByUser(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnalysisJobRepository(db)
	owner := testutil.CreateUser(t, db, "owner", false)
	other := testutil.CreateUser(t, db, "other", false)

	older := newJob(t, repo, owner.ID, time.Now().UTC().Add(-time.Minute))
	newer := newJob(t, repo, owner.ID, time.Now().UTC())
	newJob(t, repo, other.ID, time.Now().UTC())

	jobs, total, err := repo.ListByUser(context.Background(), owner.ID, Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, jobs, 2)
	assert.Equal(t, newer.ID, jobs[0].ID)
	assert.Equal(t, older.ID, jobs[1].ID)
}

func TestAnalysisJobRepository_ClaimUsesSkipLockedOnPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnalysisJobRepository(db)
	jobID := uuid.New()
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "status", "image_key", "mime_type"}).
		AddRow(jobID.String(), userID.String(), models.AnalysisProcessing, "analysis/a.jpg", "image/jpeg")
	mock.ExpectQuery(`(?s)WITH picked AS .*FROM weapon_analysis_jobs.*FOR UPDATE SKIP LOCKED.*RETURNING j\.\*`).
		WithArgs(models.AnalysisPending, models.AnalysisProcessing, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	job, err := repo.ClaimNextPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, userID, job.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisJobRepository_ClaimEmptyQueueOnPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewAnalysisJobRepository(db)

	mock.ExpectQuery(`(?s)FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.ClaimNextPending(context.Background())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTruncateJobError(t *testing.T) {
	assert.Equal(t, "short", TruncateJobError("short"))
	long := strings.Repeat("é", MaxJobErrorLength+1)
	assert.Equal(t, MaxJobErrorLength, len([]rune(TruncateJobError(long))))
}
