package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidchill/backend/internal/logging"
	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

// defaultRandomCount limits how many videos the random feed returns when the
// caller does not ask for a specific amount.
const defaultRandomCount = 20

// VideoHandler implements the video catalogue endpoints.
type VideoHandler struct {
	Videos      VideoStore
	Users       UserStore
	Comments    CommentStore
	Engagements EngagementStore
	Follows     FollowStore
	Uploads     UploadVerifier
	Sessions    SessionManager
	NowFunc     func() time.Time
}

type createVideoRequest struct {
	UserID   string `json:"userId"`
	VideoURL string `json:"videoUrl"`
}

type updateVideoRequest struct {
	ID           string  `json:"id"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

type videoActionRequest struct {
	ID string `json:"id"`
}

type videoItem struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Publish      bool      `json:"publish"`
	UploadStatus string    `json:"uploadStatus"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Dislikes     int64     `json:"dislikes"`
	CreatedAt    time.Time `json:"createdAt"`
}

type commentItem struct {
	ID        string      `json:"id"`
	VideoID   string      `json:"videoId"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"createdAt"`
	User      userProfile `json:"user"`
}

type videoDetailResponse struct {
	Video       videoItem     `json:"video"`
	User        userProfile   `json:"user"`
	Followers   int64         `json:"followers"`
	Comments    []commentItem `json:"comments"`
	HasLiked    bool          `json:"hasLiked"`
	HasDisliked bool          `json:"hasDisliked"`
	HasFollowed bool          `json:"hasFollowed"`
}

type feedEntry struct {
	Video videoItem   `json:"video"`
	User  userProfile `json:"user"`
}

func videoPayload(video models.Video) videoItem {
	return videoItem{
		ID:           video.ID,
		UserID:       video.UserID,
		Title:        video.Title,
		Description:  video.Description,
		VideoURL:     video.VideoURL,
		ThumbnailURL: video.ThumbnailURL,
		Publish:      video.Publish,
		UploadStatus: video.UploadStatus,
		Views:        video.Views,
		Likes:        video.Likes,
		Dislikes:     video.Dislikes,
		CreatedAt:    video.CreatedAt,
	}
}

// Create handles POST /api/v1/videos requests. It registers a freshly
// uploaded object as a draft video and schedules an existence check.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid create video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.VideoURL = strings.TrimSpace(req.VideoURL)
	if req.UserID == "" || req.VideoURL == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "userId and videoUrl are required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}
	if callerID != req.UserID {
		respondJSON(ctx, w, http.StatusForbidden, result{Success: false, Message: "forbidden"})
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Title:        "Untitled video",
		VideoURL:     req.VideoURL,
		UploadStatus: models.UploadStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("failed to create video record", "error", err, "userId", req.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to create video"})
		return
	}

	if h.Uploads != nil {
		if err := h.Uploads.Enqueue(ctx, video); err != nil {
			logger.Warn("failed to schedule upload verification", "error", err, "videoId", video.ID)
		}
	}

	respondJSON(ctx, w, http.StatusCreated, videoPayload(video))
}

// Get handles GET /api/v1/videos/get requests. It assembles the watch-page
// payload: the video, its owner, comments and the viewer's reaction state.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := strings.TrimSpace(r.URL.Query().Get("videoId"))
	if videoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "videoId is required"})
		return
	}

	viewerID, _ := authenticate(ctx, h.Sessions, r)

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to load video", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load video"})
		return
	}

	// Drafts are visible to their owner only.
	if !video.Publish && video.UserID != viewerID {
		respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
		return
	}

	owner, err := h.Users.FindByID(ctx, video.UserID)
	if err != nil {
		logger.Error("failed to load video owner", "error", err, "videoId", videoID, "userId", video.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load video"})
		return
	}

	comments, err := h.Comments.ListForVideo(ctx, videoID)
	if err != nil {
		logger.Error("failed to load comments", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load video"})
		return
	}

	followers, err := h.Follows.CountFollowers(ctx, video.UserID)
	if err != nil {
		logger.Error("failed to count followers", "error", err, "userId", video.UserID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load video"})
		return
	}

	state := h.viewerState(ctx, video, viewerID)

	payload := videoDetailResponse{
		Video:       videoPayload(video),
		User:        publicProfile(owner),
		Followers:   followers,
		Comments:    make([]commentItem, 0, len(comments)),
		HasLiked:    state.HasLiked,
		HasDisliked: state.HasDisliked,
		HasFollowed: state.HasFollowed,
	}
	for _, c := range comments {
		payload.Comments = append(payload.Comments, commentItem{
			ID:        c.ID,
			VideoID:   c.VideoID,
			Message:   c.Message,
			CreatedAt: c.CreatedAt,
			User: userProfile{
				ID:     c.UserID,
				Name:   c.AuthorName,
				Handle: c.AuthorHandle,
				Image:  c.AuthorImage,
			},
		})
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}

func (h VideoHandler) viewerState(ctx context.Context, video models.Video, viewerID string) models.ViewerState {
	var state models.ViewerState
	if viewerID == "" {
		return state
	}

	logger := logging.FromContext(ctx)

	if h.Engagements != nil {
		engagement, err := h.Engagements.State(ctx, models.TargetVideo, video.ID, viewerID)
		switch {
		case err == nil:
			state.HasLiked = engagement.Type == models.EngagementLike
			state.HasDisliked = engagement.Type == models.EngagementDislike
		case errors.Is(err, repositories.ErrNotFound):
		default:
			logger.Warn("failed to load viewer reaction", "error", err, "videoId", video.ID, "viewerId", viewerID)
		}
	}

	if h.Follows != nil && viewerID != video.UserID {
		followed, err := h.Follows.Exists(ctx, viewerID, video.UserID)
		if err != nil {
			logger.Warn("failed to load follow state", "error", err, "userId", video.UserID, "viewerId", viewerID)
		} else {
			state.HasFollowed = followed
		}
	}

	return state
}

// Random handles GET /api/v1/videos/random requests.
func (h VideoHandler) Random(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	count := defaultRandomCount
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "count must be a positive integer"})
			return
		}
		count = parsed
	}

	videos, err := h.Videos.ListRandom(ctx, count)
	if err != nil {
		logger.Error("failed to load random videos", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load videos"})
		return
	}

	entries := make([]feedEntry, 0, len(videos))
	for _, video := range videos {
		owner, err := h.Users.FindByID(ctx, video.UserID)
		if err != nil {
			logger.Warn("skipping video with missing owner", "videoId", video.ID, "userId", video.UserID, "error", err)
			continue
		}
		entries = append(entries, feedEntry{Video: videoPayload(video), User: publicProfile(owner)})
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": entries})
}

// Update handles POST /api/v1/videos/update requests.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "id is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	video, err := h.Videos.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to load video for update", "error", err, "videoId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update video"})
		return
	}
	if video.UserID != callerID {
		respondJSON(ctx, w, http.StatusForbidden, result{Success: false, Message: "forbidden"})
		return
	}

	if req.Title != nil {
		video.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		video.Description = strings.TrimSpace(*req.Description)
	}
	if req.ThumbnailURL != nil {
		video.ThumbnailURL = strings.TrimSpace(*req.ThumbnailURL)
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to update video", "error", err, "videoId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoPayload(video))
}

// Publish handles POST /api/v1/videos/publish requests. Each call flips the
// publish flag and answers with the new value.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req videoActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid publish payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "id is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	publish, err := h.Videos.TogglePublish(ctx, req.ID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to toggle publish", "error", err, "videoId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"success": true, "publish": publish})
}

// Delete handles POST /api/v1/videos/delete requests.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req videoActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid delete payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "id is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	if err := h.Videos.Delete(ctx, req.ID, callerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to delete video", "error", err, "videoId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to delete video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, result{Success: true})
}

// View handles POST /api/v1/videos/view requests. Views are anonymous, so no
// session is required.
func (h VideoHandler) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req videoActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid view payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "id is required"})
		return
	}

	if err := h.Videos.AddView(ctx, req.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to record view", "error", err, "videoId", req.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to record view"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, result{Success: true})
}

// Like handles POST /api/v1/videos/like requests.
func (h VideoHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.EngagementLike)
}

// Dislike handles POST /api/v1/videos/dislike requests.
func (h VideoHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.EngagementDislike)
}

func (h VideoHandler) react(w http.ResponseWriter, r *http.Request, direction string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req videoActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reaction payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "id is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	if err := h.Engagements.Apply(ctx, models.TargetVideo, req.ID, callerID, direction); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to apply reaction", "error", err, "videoId", req.ID, "direction", direction)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to save reaction"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, result{Success: true})
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
