package media

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/storage"
)

type stubStatter struct {
	size int64
	err  error
}

func (s stubStatter) Stat(_ context.Context, _ string) (int64, error) {
	return s.size, s.err
}

type recordingUpdater struct {
	mu      sync.Mutex
	ready   map[string]int64
	missing map[string]bool
}

func newRecordingUpdater() *recordingUpdater {
	return &recordingUpdater{ready: make(map[string]int64), missing: make(map[string]bool)}
}

func (u *recordingUpdater) MarkUploadReady(_ context.Context, videoID string, size int64) error {
	u.mu.Lock()
	u.ready[videoID] = size
	u.mu.Unlock()
	return nil
}

func (u *recordingUpdater) MarkUploadMissing(_ context.Context, videoID string) error {
	u.mu.Lock()
	u.missing[videoID] = true
	u.mu.Unlock()
	return nil
}

func (u *recordingUpdater) snapshot() (map[string]int64, map[string]bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	ready := make(map[string]int64, len(u.ready))
	for k, v := range u.ready {
		ready[k] = v
	}
	missing := make(map[string]bool, len(u.missing))
	for k, v := range u.missing {
		missing[k] = v
	}
	return ready, missing
}

func TestVerifierMarksReady(t *testing.T) {
	updater := newRecordingUpdater()
	verifier := NewVerifier(stubStatter{size: 2048}, updater, VerifierConfig{QueueSize: 4, Workers: 1}, nil)

	video := models.Video{ID: "vid-1", VideoURL: "user-1/clip.mp4"}
	if err := verifier.Enqueue(context.Background(), video); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := verifier.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	ready, missing := updater.snapshot()
	if ready["vid-1"] != 2048 {
		t.Fatalf("expected vid-1 marked ready with size 2048, got %v", ready)
	}
	if len(missing) != 0 {
		t.Fatalf("expected no missing marks, got %v", missing)
	}
}

func TestVerifierMarksMissing(t *testing.T) {
	updater := newRecordingUpdater()
	verifier := NewVerifier(stubStatter{err: storage.ErrObjectNotFound}, updater, VerifierConfig{}, nil)

	if err := verifier.Enqueue(context.Background(), models.Video{ID: "vid-2", VideoURL: "user-1/ghost.mp4"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := verifier.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	_, missing := updater.snapshot()
	if !missing["vid-2"] {
		t.Fatalf("expected vid-2 marked missing, got %v", missing)
	}
}

func TestVerifierLeavesPendingOnTransientError(t *testing.T) {
	updater := newRecordingUpdater()
	verifier := NewVerifier(stubStatter{err: errors.New("throttled")}, updater, VerifierConfig{}, nil)

	if err := verifier.Enqueue(context.Background(), models.Video{ID: "vid-3", VideoURL: "user-1/slow.mp4"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := verifier.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	ready, missing := updater.snapshot()
	if len(ready) != 0 || len(missing) != 0 {
		t.Fatalf("expected no status change on transient error, got ready=%v missing=%v", ready, missing)
	}
}

func TestVerifierEnqueueAfterShutdown(t *testing.T) {
	verifier := NewVerifier(stubStatter{}, newRecordingUpdater(), VerifierConfig{}, nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := verifier.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := verifier.Enqueue(context.Background(), models.Video{ID: "vid-4"}); err == nil {
		t.Fatal("expected enqueue to fail after shutdown")
	}
}
