package repositories

import (
	"context"

	"github.com/vidchill/backend/internal/models"
)

// VideoRepository exposes data access for uploaded videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListRandom(ctx context.Context, limit int) ([]models.Video, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	TogglePublish(ctx context.Context, id, ownerID string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) error
	AddView(ctx context.Context, id string) error
	MarkUploadReady(ctx context.Context, videoID string, size int64) error
	MarkUploadMissing(ctx context.Context, videoID string) error
}
