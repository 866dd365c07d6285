package models

import "time"

// User represents an account within the VidChill platform. Password holds the
// bcrypt hash and is empty for accounts created through a federated provider.
type User struct {
	ID              string
	Email           string
	Password        string
	Name            string
	Handle          string
	Image           string
	BackgroundImage string
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Session is a server-persisted credential-login session. Federated logins
// never create one; their expiry lives inside the signed token.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Video stores a reference to an uploaded video object along with its
// presentation metadata and engagement counters.
type Video struct {
	ID           string
	UserID       string
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Publish      bool
	UploadStatus string
	UploadSize   int64
	Views        int64
	Likes        int64
	Dislikes     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	UploadStatusPending = "pending"
	UploadStatusReady   = "ready"
	UploadStatusMissing = "missing"
)

// Engagement directions. A viewer holds at most one per target.
const (
	EngagementLike    = "like"
	EngagementDislike = "dislike"
)

// Engagement target kinds.
const (
	TargetVideo        = "video"
	TargetAnnouncement = "announcement"
)

// Engagement records a viewer's like or dislike of a target (video or
// announcement).
type Engagement struct {
	TargetID  string
	UserID    string
	Type      string
	CreatedAt time.Time
}

// Follow links a follower to the channel they follow.
type Follow struct {
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}

// Comment is a viewer message attached to a video.
type Comment struct {
	ID        string
	VideoID   string
	UserID    string
	Message   string
	CreatedAt time.Time
}

// CommentView is a comment joined with its author's public profile fields.
type CommentView struct {
	Comment
	AuthorName   string
	AuthorHandle string
	AuthorImage  string
}

// Playlist groups videos saved by a user.
type Playlist struct {
	ID          string
	UserID      string
	Title       string
	Description string
	CreatedAt   time.Time
	VideoIDs    []string
}

// Announcement is a channel-wide post with its own engagement counters.
type Announcement struct {
	ID        string
	UserID    string
	Message   string
	Likes     int64
	Dislikes  int64
	CreatedAt time.Time
}

// ViewerState captures how the requesting viewer relates to a video or
// channel: their reaction and whether they follow the owner.
type ViewerState struct {
	HasLiked    bool
	HasDisliked bool
	HasFollowed bool
}

// ChannelStats aggregates the dashboard figures for a creator.
type ChannelStats struct {
	TotalViews     int64
	TotalLikes     int64
	TotalFollowers int64
}
