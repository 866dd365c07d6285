package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/vidchill/backend/internal/auth"
	"github.com/vidchill/backend/internal/channel"
	"github.com/vidchill/backend/internal/config"
	"github.com/vidchill/backend/internal/db"
	"github.com/vidchill/backend/internal/handlers"
	"github.com/vidchill/backend/internal/media"
	"github.com/vidchill/backend/internal/middleware"
	"github.com/vidchill/backend/internal/repositories"
	"github.com/vidchill/backend/internal/storage"
)

// statsCacheTTL bounds how stale dashboard figures may get.
const statsCacheTTL = time.Minute

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains the background upload verifier and
// must be called before the process exits.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	deps := handlers.Dependencies{
		Users:         users,
		Verifier:      auth.NewVerifier(users),
		Sessions:      auth.NewManager(cfg.SessionTTL, cfg.JWTSecret, sessionStore),
		Videos:        videos,
		Engagements:   repositories.NewPostgresEngagementRepository(pool),
		Follows:       repositories.NewPostgresFollowRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Announcements: repositories.NewPostgresAnnouncementRepository(pool),
		Stats:         channel.NewCachingStatsProvider(users, statsCacheTTL),
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateBurst, 10*time.Minute),
		SessionTTL:    cfg.SessionTTL,
	}

	cleanup := func(context.Context) error { return nil }

	if cfg.ObjectStore.Bucket == "" {
		// Without a bucket the service still serves the catalogue; uploads
		// stay disabled and records remain pending.
		logger.Warn("object storage not configured, upload signing disabled")
		return deps, cleanup, nil
	}

	store, err := storage.NewS3Store(ctx, cfg.ObjectStore, cfg.SignedURLTTL)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}
	deps.Signer = store

	verifier := media.NewVerifier(store, videos, media.VerifierConfig{
		QueueSize: cfg.VerifyQueueSize,
		Workers:   cfg.VerifyWorkers,
	}, logger)
	deps.Uploads = verifier
	cleanup = verifier.Shutdown

	return deps, cleanup, nil
}
