package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"craftnexus/internal/models"
	"craftnexus/internal/notifications"
	"craftnexus/internal/repository"
	"craftnexus/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedEvent struct {
	userID    uuid.UUID
	eventType string
	payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishUserEvent(_ context.Context, userID uuid.UUID, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userID: userID, eventType: eventType, payload: payload})
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type workerFixture struct {
	*analysisFixture
	notifications repository.NotificationRepository
	publisher     *recordingPublisher
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	f := &workerFixture{
		analysisFixture: newAnalysisFixture(t, nil),
		publisher:       &recordingPublisher{},
	}
	f.notifications = repository.NewNotificationRepository(f.db)
	return f
}

func (f *workerFixture) worker(analyzer Analyzer, cfg WorkerConfig) *AnalysisWorker {
	notify := NewNotificationService(f.notifications, f.publisher)
	return NewAnalysisWorker(f.jobs, f.store, analyzer, notify, f.publisher, cfg)
}

func (f *workerFixture) submit(t *testing.T) *models.WeaponAnalysisJob {
	t.Helper()
	job, err := f.svc.Submit(context.Background(), SubmitAnalysisInput{UserID: f.owner.ID, Content: testutil.PNG(t, 32, 32)})
	require.NoError(t, err)
	return job
}

func (f *workerFixture) notificationsFor(t *testing.T, userID uuid.UUID) []models.Notification {
	t.Helper()
	list, _, err := f.notifications.ListByUser(context.Background(), userID, false, repository.Page{Limit: 50})
	require.NoError(t, err)
	return list
}

func TestAnalysisWorker_CompletesJob(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()
	job := f.submit(t)

	var gotMime string
	var gotBytes int
	analyzer := AnalyzerFunc(func(_ context.Context, image []byte, mime string) (string, error) {
		gotMime, gotBytes = mime, len(image)
		return "Sure! ```json\n{\"Nombre\": \"Espada de Netherita\", \"Daño\": \"8\", \"enchantments\": \"Filo V, Irrompibilidad III\"}\n```", nil
	})

	processed, err := f.worker(analyzer, WorkerConfig{}).ProcessNext(ctx)
	require.NoError(t, err)
	assert.True(t, processed)
	assert.Equal(t, "image/jpeg", gotMime)
	assert.Positive(t, gotBytes)

	stored, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisCompleted, stored.Status)
	assert.Empty(t, stored.Error)
	require.NotNil(t, stored.Result)
	assert.Equal(t, "Espada de Netherita", stored.Result.Name)
	require.NotNil(t, stored.Result.Damage)
	assert.Equal(t, 8.0, *stored.Result.Damage)
	assert.Equal(t, []string{"Filo V", "Irrompibilidad III"}, stored.Result.Enchantments)
	assert.NotNil(t, stored.StartedAt)
	assert.NotNil(t, stored.CompletedAt)

	notes := f.notificationsFor(t, f.owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationAnalysisDone, notes[0].Type)
	assert.Equal(t, "Espada de Netherita", notes[0].Body)
	assert.Equal(t, "/weapon-analysis/"+job.ID.String(), notes[0].Link)

	events := f.publisher.ofType(notifications.EventAnalysisJob)
	require.Len(t, events, 1)
	assert.Equal(t, f.owner.ID, events[0].userID)
	assert.Equal(t, AnalysisJobEvent{ID: job.ID, Status: models.AnalysisCompleted}, events[0].payload)
	assert.Len(t, f.publisher.ofType(notifications.EventNotification), 1)
}

func TestAnalysisWorker_FailsJob(t *testing.T) {
	tests := []struct {
		name      string
		analyzer  AnalyzerFunc
		wantError string
	}{
		{
			name: "no JSON in response",
			analyzer: func(context.Context, []byte, string) (string, error) {
				return "I can't identify any weapon here.", nil
			},
			wantError: "no JSON object found in model response",
		},
		{
			name: "analyzer error",
			analyzer: func(context.Context, []byte, string) (string, error) {
				return "", errors.New("gemini generate failed: quota exceeded")
			},
			wantError: "gemini generate failed: quota exceeded",
		},
		{
			name: "long error is truncated",
			analyzer: func(context.Context, []byte, string) (string, error) {
				return "", errors.New(strings.Repeat("x", 5000))
			},
			wantError: strings.Repeat("x", repository.MaxJobErrorLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkerFixture(t)
			ctx := context.Background()
			job := f.submit(t)

			processed, err := f.worker(tt.analyzer, WorkerConfig{}).ProcessNext(ctx)
			require.NoError(t, err)
			assert.True(t, processed)

			stored, err := f.jobs.GetByID(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, models.AnalysisFailed, stored.Status)
			assert.Equal(t, tt.wantError, stored.Error)
			assert.Nil(t, stored.Result)

			notes := f.notificationsFor(t, f.owner.ID)
			require.Len(t, notes, 1)
			assert.Equal(t, models.NotificationAnalysisFailed, notes[0].Type)
		})
	}
}

func TestAnalysisWorker_AnalyzerTimeout(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()
	job := f.submit(t)

	slow := AnalyzerFunc(func(ctx context.Context, _ []byte, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := f.worker(slow, WorkerConfig{JobTimeout: 20 * time.Millisecond}).ProcessNext(ctx)
	require.NoError(t, err)

	stored, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisFailed, stored.Status)
	assert.Equal(t, StaleJobError, stored.Error)
}

func TestAnalysisWorker_MissingImageFails(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()
	job := f.submit(t)
	require.NoError(t, f.store.Delete(ctx, job.ImageKey))

	called := false
	analyzer := AnalyzerFunc(func(context.Context, []byte, string) (string, error) {
		called = true
		return "{}", nil
	})
	_, err := f.worker(analyzer, WorkerConfig{}).ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, called)

	stored, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisFailed, stored.Status)
	assert.Contains(t, stored.Error, "load image")
}

func TestAnalysisWorker_EmptyQueue(t *testing.T) {
	f := newWorkerFixture(t)
	processed, err := f.worker(AnalyzerFunc(func(context.Context, []byte, string) (string, error) {
		t.Fatal("analyzer must not run")
		return "", nil
	}), WorkerConfig{}).ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestAnalysisWorker_SweepStaleFailsWithoutRetry(t *testing.T) {
	f := newWorkerFixture(t)
	ctx := context.Background()
	job := f.submit(t)

	claimed, err := f.jobs.ClaimNextPending(ctx)
	require.NoError(t, err)
	require.Equal(t, job.ID, claimed.ID)
	require.NoError(t, f.db.Model(&models.WeaponAnalysisJob{}).
		Where("id = ?", job.ID).
		Update("started_at", time.Now().UTC().Add(-time.Hour)).Error)

	w := f.worker(AnalyzerFunc(func(context.Context, []byte, string) (string, error) {
		t.Fatal("stale jobs are never re-analyzed")
		return "", nil
	}), WorkerConfig{StaleAfter: 10 * time.Minute})

	n, err := w.SweepStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := f.jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisFailed, stored.Status)
	assert.Equal(t, StaleJobError, stored.Error)

	processed, err := w.ProcessNext(ctx)
	require.NoError(t, err)
	assert.False(t, processed)

	notes := f.notificationsFor(t, f.owner.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationAnalysisFailed, notes[0].Type)
	assert.Equal(t, StaleJobError, notes[0].Body)

	// The late terminal write from the original worker is rejected.
	assert.ErrorIs(t, f.jobs.MarkCompleted(ctx, job.ID, &models.WeaponStats{Name: "late"}), repository.ErrJobNotClaimed)
}

func TestAnalysisWorker_RunDrainsQueueAndStops(t *testing.T) {
	f := newWorkerFixture(t)
	first := f.submit(t)
	second := f.submit(t)

	analyzer := AnalyzerFunc(func(context.Context, []byte, string) (string, error) {
		return `{"name": "Bow"}`, nil
	})
	w := f.worker(analyzer, WorkerConfig{Workers: 2, IdleInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, id := range []uuid.UUID{first.ID, second.ID} {
			job, err := f.jobs.GetByID(context.Background(), id)
			if err != nil || job.Status != models.AnalysisCompleted {
				return false
			}
		}
		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestAnalysisWorker_ShutdownFinishesClaimedJob(t *testing.T) {
	f := newWorkerFixture(t)
	job := f.submit(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var analyzeErr error
	analyzer := AnalyzerFunc(func(ctx context.Context, _ []byte, _ string) (string, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			analyzeErr = ctx.Err()
			return "", ctx.Err()
		}
		return `{"name": "Trident", "damage": 9}`, nil
	})
	w := f.worker(analyzer, WorkerConfig{Workers: 1, IdleInterval: 10 * time.Millisecond, JobTimeout: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job was never claimed")
	}
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a claimed job was still running")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after the job finished")
	}
	assert.NoError(t, analyzeErr)

	stored, err := f.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisCompleted, stored.Status)
	require.NotNil(t, stored.Result)
	assert.Equal(t, "Trident", stored.Result.Name)
}

func TestAnalysisWorker_WakeNeverBlocks(t *testing.T) {
	w := NewAnalysisWorker(nil, nil, nil, nil, nil, WorkerConfig{Workers: 1})
	for i := 0; i < 10; i++ {
		w.Wake()
	}
	assert.Len(t, w.wakeCh, 1)
}

func TestWorkerConfig_Defaults(t *testing.T) {
	cfg := WorkerConfig{}.withDefaults()
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.IdleInterval)
	assert.Equal(t, 10*time.Minute, cfg.StaleAfter)
	assert.Equal(t, time.Minute, cfg.sweepInterval())

	cfg = WorkerConfig{StaleAfter: time.Second}.withDefaults()
	assert.Equal(t, 5*time.Second, cfg.sweepInterval())
}
