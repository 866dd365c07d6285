package handlers

import (
	"net/http"
	"time"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Verifier      CredentialVerifier
	Sessions      SessionManager
	Videos        VideoStore
	Engagements   EngagementStore
	Follows       FollowStore
	Comments      CommentStore
	Playlists     PlaylistStore
	Announcements AnnouncementStore
	Signer        UploadSigner
	Uploads       UploadVerifier
	Stats         StatsProvider
	AuthLimiter   RateLimiter
	SessionTTL    time.Duration
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Verifier: deps.Verifier, Sessions: deps.Sessions, Limiter: deps.AuthLimiter, SessionTTL: deps.SessionTTL}
	uploads := UploadHandler{Signer: deps.Signer, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	videos := VideoHandler{
		Videos:      deps.Videos,
		Users:       deps.Users,
		Comments:    deps.Comments,
		Engagements: deps.Engagements,
		Follows:     deps.Follows,
		Uploads:     deps.Uploads,
		Sessions:    deps.Sessions,
	}
	users := UserHandler{Users: deps.Users, Follows: deps.Follows, Videos: deps.Videos, Stats: deps.Stats, Sessions: deps.Sessions}
	comments := CommentHandler{Comments: deps.Comments, Sessions: deps.Sessions}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Sessions: deps.Sessions}
	announcements := AnnouncementHandler{Announcements: deps.Announcements, Engagements: deps.Engagements, Sessions: deps.Sessions}

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/signin", auth.SignIn)
	mux.HandleFunc("/api/v1/auth/signout", auth.SignOut)

	mux.HandleFunc("/api/v1/uploads/sign", uploads.Sign)

	mux.HandleFunc("/api/v1/videos", videos.Create)
	mux.HandleFunc("/api/v1/videos/get", videos.Get)
	mux.HandleFunc("/api/v1/videos/random", videos.Random)
	mux.HandleFunc("/api/v1/videos/update", videos.Update)
	mux.HandleFunc("/api/v1/videos/publish", videos.Publish)
	mux.HandleFunc("/api/v1/videos/delete", videos.Delete)
	mux.HandleFunc("/api/v1/videos/view", videos.View)
	mux.HandleFunc("/api/v1/videos/like", videos.Like)
	mux.HandleFunc("/api/v1/videos/dislike", videos.Dislike)

	mux.HandleFunc("/api/v1/users/follow", users.Follow)
	mux.HandleFunc("/api/v1/users/unfollow", users.Unfollow)
	mux.HandleFunc("/api/v1/users/channel", users.Channel)
	mux.HandleFunc("/api/v1/users/dashboard", users.Dashboard)
	mux.HandleFunc("/api/v1/users/followings", users.Followings)
	mux.HandleFunc("/api/v1/users/update", users.Update)

	mux.HandleFunc("/api/v1/comments", comments.Add)

	mux.HandleFunc("/api/v1/playlists", playlists.Handle)
	mux.HandleFunc("/api/v1/playlists/videos", playlists.ToggleVideo)

	mux.HandleFunc("/api/v1/announcements", announcements.Handle)
	mux.HandleFunc("/api/v1/announcements/like", announcements.Like)
	mux.HandleFunc("/api/v1/announcements/dislike", announcements.Dislike)
}
