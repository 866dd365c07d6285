package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

type inMemoryPlaylistStore struct {
	playlists map[string]models.Playlist
}

func newInMemoryPlaylistStore() *inMemoryPlaylistStore {
	return &inMemoryPlaylistStore{playlists: make(map[string]models.Playlist)}
}

func (s *inMemoryPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *inMemoryPlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *inMemoryPlaylistStore) ListForUser(_ context.Context, userID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.UserID == userID {
			out = append(out, playlist)
		}
	}
	return out, nil
}

func (s *inMemoryPlaylistStore) ToggleVideo(_ context.Context, playlistID, videoID string) (bool, error) {
	playlist, ok := s.playlists[playlistID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	for i, id := range playlist.VideoIDs {
		if id == videoID {
			playlist.VideoIDs = append(playlist.VideoIDs[:i], playlist.VideoIDs[i+1:]...)
			s.playlists[playlistID] = playlist
			return false, nil
		}
	}
	playlist.VideoIDs = append(playlist.VideoIDs, videoID)
	s.playlists[playlistID] = playlist
	return true, nil
}

func TestPlaylistHandlerCreateAndList(t *testing.T) {
	manager, _ := newTestSessionManager()
	store := newInMemoryPlaylistStore()
	handler := PlaylistHandler{Playlists: store, Sessions: manager}

	req := authorizedRequest(t, manager, "user-1", http.MethodPost, "/api/v1/playlists", createPlaylistRequest{Title: "Watch later"})
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created playlistItem
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Title != "Watch later" || created.UserID != "user-1" {
		t.Fatalf("unexpected playlist %+v", created)
	}

	req = authorizedRequest(t, manager, "user-1", http.MethodGet, "/api/v1/playlists", nil)
	rec = httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var listed struct {
		Playlists []playlistItem `json:"playlists"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(listed.Playlists) != 1 || listed.Playlists[0].ID != created.ID {
		t.Fatalf("unexpected playlists %+v", listed.Playlists)
	}
}

func TestPlaylistHandlerCreateRequiresTitle(t *testing.T) {
	manager, _ := newTestSessionManager()
	handler := PlaylistHandler{Playlists: newInMemoryPlaylistStore(), Sessions: manager}

	req := authorizedRequest(t, manager, "user-1", http.MethodPost, "/api/v1/playlists", createPlaylistRequest{})
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPlaylistHandlerToggleVideo(t *testing.T) {
	manager, _ := newTestSessionManager()
	store := newInMemoryPlaylistStore()
	store.playlists["pl-1"] = models.Playlist{ID: "pl-1", UserID: "user-1", Title: "Watch later"}
	handler := PlaylistHandler{Playlists: store, Sessions: manager}

	payload := togglePlaylistVideoRequest{PlaylistID: "pl-1", VideoID: "vid-1"}

	req := authorizedRequest(t, manager, "user-1", http.MethodPost, "/api/v1/playlists/videos", payload)
	rec := httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Added   bool `json:"added"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Added {
		t.Fatal("expected first toggle to add the video")
	}

	req = authorizedRequest(t, manager, "user-1", http.MethodPost, "/api/v1/playlists/videos", payload)
	rec = httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Added {
		t.Fatal("expected second toggle to remove the video")
	}
}

func TestPlaylistHandlerToggleVideoOwnership(t *testing.T) {
	manager, _ := newTestSessionManager()
	store := newInMemoryPlaylistStore()
	store.playlists["pl-1"] = models.Playlist{ID: "pl-1", UserID: "user-1", Title: "Watch later"}
	handler := PlaylistHandler{Playlists: store, Sessions: manager}

	req := authorizedRequest(t, manager, "intruder", http.MethodPost, "/api/v1/playlists/videos", togglePlaylistVideoRequest{PlaylistID: "pl-1", VideoID: "vid-1"})
	rec := httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}
	if len(store.playlists["pl-1"].VideoIDs) != 0 {
		t.Fatal("expected no membership change")
	}
}
