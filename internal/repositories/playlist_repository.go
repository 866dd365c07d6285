package repositories

import (
	"context"

	"github.com/vidchill/backend/internal/models"
)

// PlaylistRepository exposes data access for user playlists.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForUser(ctx context.Context, userID string) ([]models.Playlist, error)
	ToggleVideo(ctx context.Context, playlistID, videoID string) (bool, error)
}
