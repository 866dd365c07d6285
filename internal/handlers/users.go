package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vidchill/backend/internal/logging"
	"github.com/vidchill/backend/internal/repositories"
)

// UserHandler implements channel, follow and profile endpoints.
type UserHandler struct {
	Users    UserStore
	Follows  FollowStore
	Videos   VideoStore
	Stats    StatsProvider
	Sessions SessionManager
	NowFunc  func() time.Time
}

type followRequest struct {
	FollowingID string `json:"followingId"`
}

type updateUserRequest struct {
	Name            *string `json:"name"`
	Handle          *string `json:"handle"`
	Image           *string `json:"image"`
	BackgroundImage *string `json:"backgroundImage"`
	Description     *string `json:"description"`
}

type channelResponse struct {
	User        userProfile `json:"user"`
	Followers   int64       `json:"followers"`
	HasFollowed bool        `json:"hasFollowed"`
	Videos      []videoItem `json:"videos"`
}

type dashboardResponse struct {
	User           userProfile `json:"user"`
	TotalViews     int64       `json:"totalViews"`
	TotalLikes     int64       `json:"totalLikes"`
	TotalFollowers int64       `json:"totalFollowers"`
	Videos         []videoItem `json:"videos"`
}

// Follow handles POST /api/v1/users/follow requests. Repeated calls toggle
// the relationship and answer with the resulting state.
func (h UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid follow payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}
	req.FollowingID = strings.TrimSpace(req.FollowingID)
	if req.FollowingID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "followingId is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	following, err := h.Follows.Toggle(ctx, callerID, req.FollowingID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrSelfFollow):
			respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "you cannot follow yourself"})
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "user not found"})
		default:
			logger.Error("failed to toggle follow", "error", err, "followerId", callerID, "followingId", req.FollowingID)
			respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update follow"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"success": true, "following": following})
}

// Unfollow handles POST /api/v1/users/unfollow requests.
func (h UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid unfollow payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}
	req.FollowingID = strings.TrimSpace(req.FollowingID)
	if req.FollowingID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "followingId is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	if err := h.Follows.Delete(ctx, callerID, req.FollowingID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "follow not found"})
			return
		}
		logger.Error("failed to unfollow", "error", err, "followerId", callerID, "followingId", req.FollowingID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to unfollow"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, result{Success: true})
}

// Channel handles GET /api/v1/users/channel requests. It returns a channel's
// public profile, follower count and published videos.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if channelID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "userId is required"})
		return
	}

	viewerID, _ := authenticate(ctx, h.Sessions, r)

	owner, err := h.Users.FindByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "channel not found"})
			return
		}
		logger.Error("failed to load channel", "error", err, "userId", channelID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load channel"})
		return
	}

	followers, err := h.Follows.CountFollowers(ctx, channelID)
	if err != nil {
		logger.Error("failed to count followers", "error", err, "userId", channelID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load channel"})
		return
	}

	hasFollowed := false
	if viewerID != "" && viewerID != channelID {
		hasFollowed, err = h.Follows.Exists(ctx, viewerID, channelID)
		if err != nil {
			logger.Warn("failed to load follow state", "error", err, "userId", channelID, "viewerId", viewerID)
			hasFollowed = false
		}
	}

	videos, err := h.Videos.ListByOwner(ctx, channelID)
	if err != nil {
		logger.Error("failed to load channel videos", "error", err, "userId", channelID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load channel"})
		return
	}

	payload := channelResponse{
		User:        publicProfile(owner),
		Followers:   followers,
		HasFollowed: hasFollowed,
		Videos:      make([]videoItem, 0, len(videos)),
	}
	for _, video := range videos {
		if !video.Publish {
			continue
		}
		payload.Videos = append(payload.Videos, videoPayload(video))
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}

// Dashboard handles GET /api/v1/users/dashboard requests. It is restricted to
// the channel owner and includes unpublished videos.
func (h UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	owner, err := h.Users.FindByID(ctx, callerID)
	if err != nil {
		logger.Error("failed to load dashboard owner", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load dashboard"})
		return
	}

	stats, err := h.Stats.DashboardStats(ctx, callerID)
	if err != nil {
		logger.Error("failed to load dashboard stats", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load dashboard"})
		return
	}

	videos, err := h.Videos.ListByOwner(ctx, callerID)
	if err != nil {
		logger.Error("failed to load dashboard videos", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load dashboard"})
		return
	}

	payload := dashboardResponse{
		User:           publicProfile(owner),
		TotalViews:     stats.TotalViews,
		TotalLikes:     stats.TotalLikes,
		TotalFollowers: stats.TotalFollowers,
		Videos:         make([]videoItem, 0, len(videos)),
	}
	for _, video := range videos {
		payload.Videos = append(payload.Videos, videoPayload(video))
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}

// Followings handles GET /api/v1/users/followings requests.
func (h UserHandler) Followings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	following, err := h.Follows.ListFollowing(ctx, callerID)
	if err != nil {
		logger.Error("failed to load followings", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load followings"})
		return
	}

	profiles := make([]userProfile, 0, len(following))
	for _, user := range following {
		profiles = append(profiles, publicProfile(user))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"followings": profiles})
}

// Update handles POST /api/v1/users/update requests.
func (h UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update user payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	user, err := h.Users.FindByID(ctx, callerID)
	if err != nil {
		logger.Error("failed to load user for update", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update profile"})
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "name cannot be empty"})
			return
		}
		user.Name = name
	}
	if req.Handle != nil {
		user.Handle = strings.TrimSpace(*req.Handle)
	}
	if req.Image != nil {
		user.Image = strings.TrimSpace(*req.Image)
	}
	if req.BackgroundImage != nil {
		user.BackgroundImage = strings.TrimSpace(*req.BackgroundImage)
	}
	if req.Description != nil {
		user.Description = strings.TrimSpace(*req.Description)
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, result{Success: false, Message: "handle is already taken"})
			return
		}
		logger.Error("failed to update user", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"success": true, "user": publicProfile(user)})
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
