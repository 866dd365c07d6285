package repositories

import (
	"context"

	"github.com/vidchill/backend/internal/models"
)

// EngagementRepository applies like/dislike reactions to videos and
// announcements. A viewer holds at most one active reaction per target.
type EngagementRepository interface {
	Apply(ctx context.Context, targetKind, targetID, userID, direction string) error
	State(ctx context.Context, targetKind, targetID, userID string) (models.Engagement, error)
}
