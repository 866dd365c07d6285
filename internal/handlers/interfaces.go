package handlers

import (
	"context"

	"github.com/vidchill/backend/internal/models"
)

// UserStore captures the persistence operations required by the user-facing handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// CredentialVerifier validates email/password pairs against stored hashes.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (models.User, error)
}

// SessionManager issues, validates and revokes session tokens.
type SessionManager interface {
	Issue(ctx context.Context, method, userID string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string)
}

// VideoStore captures persistence for the video catalogue.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListRandom(ctx context.Context, limit int) ([]models.Video, error)
	ListByOwner(ctx context.Context, userID string) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	TogglePublish(ctx context.Context, id, ownerID string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) error
	AddView(ctx context.Context, id string) error
}

// EngagementStore applies and reads like/dislike reactions.
type EngagementStore interface {
	Apply(ctx context.Context, targetKind, targetID, userID, direction string) error
	State(ctx context.Context, targetKind, targetID, userID string) (models.Engagement, error)
}

// FollowStore captures operations for follower/following pairs.
type FollowStore interface {
	Toggle(ctx context.Context, followerID, followingID string) (bool, error)
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	ListFollowing(ctx context.Context, followerID string) ([]models.User, error)
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	ListForVideo(ctx context.Context, videoID string) ([]models.CommentView, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForUser(ctx context.Context, userID string) ([]models.Playlist, error)
	ToggleVideo(ctx context.Context, playlistID, videoID string) (bool, error)
}

// AnnouncementStore captures persistence for channel announcements.
type AnnouncementStore interface {
	Create(ctx context.Context, announcement models.Announcement) error
	ListForUser(ctx context.Context, userID string) ([]models.Announcement, error)
}

// UploadSigner grants short-lived write capabilities against object storage.
type UploadSigner interface {
	SignPutURL(ctx context.Context, key, contentType string) (string, error)
}

// UploadVerifier schedules background existence checks for uploaded objects.
type UploadVerifier interface {
	Enqueue(ctx context.Context, video models.Video) error
}

// StatsProvider aggregates dashboard figures for a creator.
type StatsProvider interface {
	DashboardStats(ctx context.Context, userID string) (models.ChannelStats, error)
}
