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

// CommentHandler implements video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

type addCommentRequest struct {
	VideoID string `json:"videoId"`
	Message string `json:"message"`
}

// Add handles POST /api/v1/comments requests.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.VideoID = strings.TrimSpace(req.VideoID)
	req.Message = strings.TrimSpace(req.Message)
	if req.VideoID == "" || req.Message == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "videoId and message are required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   req.VideoID,
		UserID:    callerID,
		Message:   req.Message,
		CreatedAt: h.now(),
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "video not found"})
			return
		}
		logger.Error("failed to create comment", "error", err, "videoId", req.VideoID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to add comment"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]any{
		"success": true,
		"comment": commentItem{
			ID:        comment.ID,
			VideoID:   comment.VideoID,
			Message:   comment.Message,
			CreatedAt: comment.CreatedAt,
			User:      userProfile{ID: callerID},
		},
	})
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
