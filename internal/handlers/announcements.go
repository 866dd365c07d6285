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

// AnnouncementHandler implements channel announcement endpoints.
type AnnouncementHandler struct {
	Announcements AnnouncementStore
	Engagements   EngagementStore
	Sessions      SessionManager
	NowFunc       func() time.Time
}

type addAnnouncementRequest struct {
	Message string `json:"message"`
}

type announcementActionRequest struct {
	ID string `json:"id"`
}

type announcementItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Likes     int64     `json:"likes"`
	Dislikes  int64     `json:"dislikes"`
	CreatedAt time.Time `json:"createdAt"`
}

func announcementPayload(a models.Announcement) announcementItem {
	return announcementItem{
		ID:        a.ID,
		UserID:    a.UserID,
		Message:   a.Message,
		Likes:     a.Likes,
		Dislikes:  a.Dislikes,
		CreatedAt: a.CreatedAt,
	}
}

// Handle dispatches /api/v1/announcements requests: GET lists a channel's
// announcements, POST creates one for the caller.
func (h AnnouncementHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h AnnouncementHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	channelID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if channelID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "userId is required"})
		return
	}

	announcements, err := h.Announcements.ListForUser(ctx, channelID)
	if err != nil {
		logger.Error("failed to list announcements", "error", err, "userId", channelID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to load announcements"})
		return
	}

	items := make([]announcementItem, 0, len(announcements))
	for _, announcement := range announcements {
		items = append(items, announcementPayload(announcement))
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"announcements": items})
}

func (h AnnouncementHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req addAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid announcement payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "message is required"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "authentication required"})
		return
	}

	announcement := models.Announcement{
		ID:        uuid.NewString(),
		UserID:    callerID,
		Message:   req.Message,
		CreatedAt: h.now(),
	}

	if err := h.Announcements.Create(ctx, announcement); err != nil {
		logger.Error("failed to create announcement", "error", err, "userId", callerID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to create announcement"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, announcementPayload(announcement))
}

// Like handles POST /api/v1/announcements/like requests.
func (h AnnouncementHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.EngagementLike)
}

// Dislike handles POST /api/v1/announcements/dislike requests.
func (h AnnouncementHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.react(w, r, models.EngagementDislike)
}

func (h AnnouncementHandler) react(w http.ResponseWriter, r *http.Request, direction string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req announcementActionRequest
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

	if err := h.Engagements.Apply(ctx, models.TargetAnnouncement, req.ID, callerID, direction); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, result{Success: false, Message: "announcement not found"})
			return
		}
		logger.Error("failed to apply reaction", "error", err, "announcementId", req.ID, "direction", direction)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to save reaction"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, result{Success: true})
}

func (h AnnouncementHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
