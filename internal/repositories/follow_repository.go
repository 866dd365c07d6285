package repositories

import (
	"context"

	"github.com/vidchill/backend/internal/models"
)

// FollowRepository tracks follower/following pairs. Pairs are unique and a
// user can never follow themselves.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID string) (bool, error)
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	ListFollowing(ctx context.Context, followerID string) ([]models.User, error)
}
