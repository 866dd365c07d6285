package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/storage"
)

// ObjectStatter answers whether an object exists at a storage key.
type ObjectStatter interface {
	Stat(ctx context.Context, key string) (int64, error)
}

// VideoStatusUpdater persists upload verification results for videos.
type VideoStatusUpdater interface {
	MarkUploadReady(ctx context.Context, videoID string, size int64) error
	MarkUploadMissing(ctx context.Context, videoID string) error
}

// VerifierConfig controls the concurrency characteristics of the verifier.
type VerifierConfig struct {
	QueueSize int
	Workers   int
}

// Verifier asynchronously confirms that the object referenced by a newly
// created video record actually exists in the bucket. Clients upload directly
// to storage, so record creation alone proves nothing; the feed only surfaces
// videos once verification marks them ready.
type Verifier struct {
	statter ObjectStatter
	updater VideoStatusUpdater
	logger  *slog.Logger

	jobs   chan verifyJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type verifyJob struct {
	video models.Video
}

var errVerifierClosed = errors.New("upload verifier closed")

// NewVerifier constructs a background worker pool that verifies uploads.
func NewVerifier(statter ObjectStatter, updater VideoStatusUpdater, cfg VerifierConfig, logger *slog.Logger) *Verifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	v := &Verifier{
		statter: statter,
		updater: updater,
		logger:  logger,
		jobs:    make(chan verifyJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	v.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go v.worker()
	}

	return v
}

// Enqueue schedules upload verification for the supplied video.
func (v *Verifier) Enqueue(ctx context.Context, video models.Video) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-v.ctx.Done():
		return errVerifierClosed
	default:
	}

	job := verifyJob{video: video}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-v.ctx.Done():
		return errVerifierClosed
	case v.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (v *Verifier) Shutdown(ctx context.Context) error {
	v.once.Do(func() {
		v.cancel()
		close(v.jobs)
	})

	done := make(chan struct{})
	go func() {
		v.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (v *Verifier) worker() {
	defer v.wg.Done()

	// Cancellation only stops new enqueues; queued jobs are still drained so
	// accepted uploads always get a verdict.
	for job := range v.jobs {
		v.handleJob(job)
	}
}

func (v *Verifier) handleJob(job verifyJob) {
	if v.statter == nil || v.updater == nil {
		v.logger.Error("upload verifier missing dependencies", "hasStatter", v.statter != nil, "hasUpdater", v.updater != nil)
		return
	}

	statCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	size, err := v.statter.Stat(statCtx, job.video.VideoURL)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			v.logger.Warn("uploaded object missing", "videoId", job.video.ID, "key", job.video.VideoURL)
			v.recordMissing(job.video.ID)
			return
		}
		// Transient provider error: leave the record pending so a future
		// verification attempt can still succeed.
		v.logger.Error("upload verification failed", "videoId", job.video.ID, "key", job.video.VideoURL, "error", err)
		return
	}

	if err := v.recordReady(job.video.ID, size); err != nil {
		v.logger.Error("mark upload ready", "videoId", job.video.ID, "error", err)
	}
}

func (v *Verifier) recordMissing(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := v.updater.MarkUploadMissing(ctx, videoID); err != nil {
		v.logger.Error("record missing upload", "videoId", videoID, "error", err)
	}
}

func (v *Verifier) recordReady(videoID string, size int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return v.updater.MarkUploadReady(ctx, videoID, size)
}
