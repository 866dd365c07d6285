package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidchill/backend/internal/logging"
	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Sessions  SessionManager
	NowFunc   func() time.Time
}

type createPlaylistRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type togglePlaylistVideoRequest struct {
	PlaylistID string `json:"playlistId"`
	VideoID    string `json:"videoId"`
}

type playlistItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

func playlistPayload(playlist models.Playlist) playlistItem {
	ids := playlist.VideoIDs
	if ids == nil {
		ids = []string{}
	}
	return playlistItem{
		ID:          playlist.ID,
		UserID:      playlist.UserID,
		Title:       playlist.Title,
		Description: playlist.Description,
		VideoIDs:    ids,
		CreatedAt:   playlist.CreatedAt,
	}
}

// Handle dispatches /api/v1/playlists requests: GET lists the caller's
// playlists, POST creates one.
func (h PlaylistHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h PlaylistHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	playlists, err := h.Playlists.ListForUser(ctx, callerID)
	if err != nil {
		logger.Error("failed to list playlists", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load playlists"})
		return
	}

	items := make([]playlistItem, 0, len(playlists))
	for _, playlist := range playlists {
		items = append(items, playlistPayload(playlist))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"playlists": items})
}

func (h PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "title is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	playlist := models.Playlist{
		ID:          uuid.NewString(),
		UserID:      callerID,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   h.now(),
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		logger.Error("failed to create playlist", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to create playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, playlistPayload(playlist))
}

// ToggleVideo handles POST /api/v1/playlists/videos requests. Adding a video
// that is already present removes it instead.
func (h PlaylistHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req togglePlaylistVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.PlaylistID = strings.TrimSpace(req.PlaylistID)
	req.VideoID = strings.TrimSpace(req.VideoID)
	if req.PlaylistID == "" || req.VideoID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "playlistId and videoId are required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, req.PlaylistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "playlist not found"})
			return
		}
		logger.Error("failed to load playlist", "error", err, "playlistId", req.PlaylistID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update playlist"})
		return
	}
	if playlist.UserID != callerID {
		respondJSON(ctx, w, http.StatusForbidden, result{Success: false, Message: "forbidden"})
		return
	}

	added, err := h.Playlists.ToggleVideo(ctx, req.PlaylistID, req.VideoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to toggle playlist video", "error", err, "playlistId", req.PlaylistID, "videoId", req.VideoID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to update playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"success": true, "added": added})
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
