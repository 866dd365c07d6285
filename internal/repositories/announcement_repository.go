package repositories

import (
	"context"

	"github.com/vidchill/backend/internal/models"
)

// AnnouncementRepository exposes data access for channel announcements.
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement models.Announcement) error
	ListForUser(ctx context.Context, userID string) ([]models.Announcement, error)
}
