package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vidchill/backend/internal/logging"
	"github.com/vidchill/backend/internal/storage"
)

// UploadHandler issues pre-signed upload URLs for object storage.
type UploadHandler struct {
	Signer   UploadSigner
	Sessions SessionManager
	Limiter  RateLimiter
}

type signUploadRequest struct {
	UserID   string `json:"userId"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	Kind     string `json:"type"`
}

type signUploadResponse struct {
	SignedURL string `json:"signedUrl"`
	Key       string `json:"key"`
}

// Sign handles POST /api/v1/uploads/sign requests.
func (h UploadHandler) Sign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Signer == nil {
		logger.Error("upload signer unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !allowRequest(h.Limiter, r, "uploads") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req signUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid upload sign payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.FileName = strings.TrimSpace(req.FileName)
	req.FileType = strings.TrimSpace(req.FileType)
	if req.UserID == "" || req.FileName == "" || req.FileType == "" {
		logger.Warn("upload sign missing fields", "userId", req.UserID, "fileName", req.FileName, "fileType", req.FileType)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	callerID, ok := authenticate(ctx, h.Sessions, r)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}
	if callerID != req.UserID {
		logger.Warn("upload sign for foreign account", "caller", callerID, "userId", req.UserID)
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}

	key := storage.ObjectKey(req.UserID, req.FileName, req.Kind)
	signedURL, err := h.Signer.SignPutURL(ctx, key, req.FileType)
	if err != nil {
		logger.Error("failed to sign upload url", "error", err, "key", key)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, signUploadResponse{SignedURL: signedURL, Key: key})
}
