package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"craftnexus/internal/cache"
	"craftnexus/internal/middleware"
	"craftnexus/internal/models"
	"craftnexus/internal/notifications"
	"craftnexus/internal/observability"
	"craftnexus/internal/repository"
	"craftnexus/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// StaleJobError is stored on jobs failed by the stale sweep.
const StaleJobError = "analysis timed out"

const (
	defaultIdleInterval = 2 * time.Second
	defaultJobTimeout   = 90 * time.Second
	defaultStaleAfter   = 10 * time.Minute
	errorBackoff        = time.Second
	terminalWriteWait   = 5 * time.Second
)

// WorkerConfig tunes the analysis worker pool.
type WorkerConfig struct {
	Workers      int
	IdleInterval time.Duration
	JobTimeout   time.Duration
	StaleAfter   time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = defaultIdleInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = defaultStaleAfter
	}
	return c
}

// sweepInterval is how often stuck jobs are looked for.
func (c WorkerConfig) sweepInterval() time.Duration {
	d := c.StaleAfter / 4
	if d < 5*time.Second {
		d = 5 * time.Second
	}
	if d > time.Minute {
		d = time.Minute
	}
	return d
}

// AnalysisJobEvent is pushed over the websocket whenever a job finishes.
type AnalysisJobEvent struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// AnalysisWorker drains the weapon_analysis_jobs queue.
type AnalysisWorker struct {
	jobs      repository.AnalysisJobRepository
	store     storage.ObjectStore
	analyzer  Analyzer
	notify    Notifier
	publisher EventPublisher
	cfg       WorkerConfig
	wakeCh    chan struct{}
}

// NewAnalysisWorker creates a worker pool. notify and publisher may be nil.
func NewAnalysisWorker(
	jobs repository.AnalysisJobRepository,
	store storage.ObjectStore,
	analyzer Analyzer,
	notify Notifier,
	publisher EventPublisher,
	cfg WorkerConfig,
) *AnalysisWorker {
	cfg = cfg.withDefaults()
	return &AnalysisWorker{
		jobs:      jobs,
		store:     store,
		analyzer:  analyzer,
		notify:    notify,
		publisher: publisher,
		cfg:       cfg,
		wakeCh:    make(chan struct{}, cfg.Workers),
	}
}

// Wake nudges one idle worker. It never blocks.
func (w *AnalysisWorker) Wake() {
	select {
	case w.wakeCh <- struct{}{}:
	default:
	}
}

// Run starts the workers and the stale sweep and blocks until ctx is done
// and every claimed job has been finalized.
func (w *AnalysisWorker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Workers; i++ {
		g.Go(func() error {
			w.loop(gctx)
			return nil
		})
	}
	g.Go(func() error {
		w.sweepLoop(gctx)
		return nil
	})

	slog.InfoContext(ctx, "analysis workers started",
		slog.Int("workers", w.cfg.Workers),
		slog.Duration("job_timeout", w.cfg.JobTimeout),
		slog.Duration("stale_after", w.cfg.StaleAfter),
	)
	return g.Wait()
}

func (w *AnalysisWorker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		processed, err := w.ProcessNext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.ErrorContext(ctx, "analysis claim failed", slog.String("error", err.Error()))
			if !sleepContext(ctx, errorBackoff) {
				return
			}
			continue
		}
		if processed {
			continue
		}

		if !w.idle(ctx) {
			return
		}
	}
}

// idle waits for the idle interval or a wake-up. Returns false once ctx is done.
func (w *AnalysisWorker) idle(ctx context.Context) bool {
	t := time.NewTimer(w.cfg.IdleInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-w.wakeCh:
		return true
	case <-t.C:
		return true
	}
}

func (w *AnalysisWorker) sweepLoop(ctx context.Context) {
	for {
		if _, err := w.SweepStale(ctx); err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "analysis stale sweep failed", slog.String("error", err.Error()))
		}
		if !sleepContext(ctx, w.cfg.sweepInterval()) {
			return
		}
	}
}

// SweepStale fails jobs stuck in processing longer than StaleAfter. They are
// never put back to pending.
func (w *AnalysisWorker) SweepStale(ctx context.Context) (int, error) {
	failed, err := w.jobs.FailStaleProcessing(ctx, w.cfg.StaleAfter, StaleJobError)
	for i := range failed {
		job := &failed[i]
		slog.WarnContext(middleware.WithJobID(ctx, job.ID.String()), "analysis job timed out")
		observability.ObserveAnalysis(models.AnalysisFailed, time.Time{})
		w.finalize(ctx, job)
	}
	return len(failed), err
}

// ProcessNext claims and runs one job. It reports false when the queue was empty.
func (w *AnalysisWorker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.jobs.ClaimNextPending(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	w.process(ctx, job)
	return true, nil
}

func (w *AnalysisWorker) process(ctx context.Context, job *models.WeaponAnalysisJob) {
	// A claimed job runs to its terminal state on shutdown. Only JobTimeout
	// bounds the analysis; the loops stop claiming once ctx is done.
	ctx = context.WithoutCancel(ctx)
	span, ctx := observability.StartAnalysisSpan(ctx, job.ID.String(), job.UserID.String())
	defer span.End()
	ctx = middleware.WithJobID(ctx, job.ID.String())

	started := time.Now()
	if job.StartedAt != nil {
		started = *job.StartedAt
	}

	stats, err := w.analyze(ctx, job)

	wctx, cancel := context.WithTimeout(ctx, terminalWriteWait)
	defer cancel()

	if err != nil {
		span.SetError(err)
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = StaleJobError
		}
		if ferr := w.jobs.MarkFailed(wctx, job.ID, msg); ferr != nil {
			w.logTerminalWriteError(wctx, ferr)
			return
		}
		slog.WarnContext(wctx, "analysis job failed", slog.String("error", msg))
		job.Status = models.AnalysisFailed
		job.Error = repository.TruncateJobError(msg)
	} else {
		if cerr := w.jobs.MarkCompleted(wctx, job.ID, stats); cerr != nil {
			w.logTerminalWriteError(wctx, cerr)
			return
		}
		job.Status = models.AnalysisCompleted
		job.Result = stats
		span.AddAttributes(attribute.String("weapon.name", stats.Name))
		slog.InfoContext(wctx, "analysis job completed", slog.Duration("duration", time.Since(started)))
	}

	span.AddAttributes(attribute.String("job.status", job.Status))
	observability.ObserveAnalysis(job.Status, started)
	w.finalize(wctx, job)
}

func (w *AnalysisWorker) logTerminalWriteError(ctx context.Context, err error) {
	if errors.Is(err, repository.ErrJobNotClaimed) {
		slog.WarnContext(ctx, "analysis job was finalized elsewhere")
		return
	}
	slog.ErrorContext(ctx, "failed to store analysis outcome", slog.String("error", err.Error()))
}

func (w *AnalysisWorker) analyze(ctx context.Context, job *models.WeaponAnalysisJob) (*models.WeaponStats, error) {
	data, err := w.store.Get(ctx, job.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	observability.Stage(ctx, "image.loaded", attribute.Int("image.bytes", len(data)))

	actx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	text, err := w.analyzer.Analyze(actx, data, job.MimeType)
	if err != nil {
		return nil, err
	}
	observability.Stage(ctx, "model.replied", attribute.Int("reply.chars", len(text)))

	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	return NormalizeStats(raw), nil
}

// finalize runs after a job reached a terminal state.
func (w *AnalysisWorker) finalize(ctx context.Context, job *models.WeaponAnalysisJob) {
	cache.Invalidate(ctx, cache.AnalysisJobKey(job.ID))

	in := NotifyInput{
		UserID: job.UserID,
		Link:   "/weapon-analysis/" + job.ID.String(),
	}
	if job.Status == models.AnalysisCompleted {
		in.Type = models.NotificationAnalysisDone
		in.Title = "Weapon analysis finished"
		if job.Result != nil && job.Result.Name != "" {
			in.Body = job.Result.Name
		}
	} else {
		in.Type = models.NotificationAnalysisFailed
		in.Title = "Weapon analysis failed"
		in.Body = job.Error
	}
	notifyQuietly(ctx, w.notify, in)

	if w.publisher != nil {
		event := AnalysisJobEvent{ID: job.ID, Status: job.Status, Error: job.Error}
		if err := w.publisher.PublishUserEvent(ctx, job.UserID, notifications.EventAnalysisJob, event); err != nil {
			slog.WarnContext(ctx, "failed to publish analysis event", slog.String("error", err.Error()))
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
