package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidchill/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		SessionTTL:   time.Hour,
		JWTSecret:    "test-secret",
		SignedURLTTL: time.Minute,
		ObjectStore:  config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = cleanup(ctx)
	}()

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Videos == nil {
		t.Fatal("expected video repository to be configured")
	}
	if deps.Engagements == nil {
		t.Fatal("expected engagement repository to be configured")
	}
	if deps.Stats == nil {
		t.Fatal("expected channel stats provider to be configured")
	}
	if deps.Signer == nil {
		t.Fatal("expected upload signer to be configured")
	}
	if deps.Uploads == nil {
		t.Fatal("expected upload verifier to be configured")
	}
}

func TestBuildDependenciesWithoutBucket(t *testing.T) {
	cfg := config.Config{SessionTTL: time.Hour, JWTSecret: "test-secret"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}

	if deps.Signer != nil {
		t.Fatal("expected upload signing to be disabled without a bucket")
	}
	if deps.Uploads != nil {
		t.Fatal("expected upload verification to be disabled without a bucket")
	}
}
