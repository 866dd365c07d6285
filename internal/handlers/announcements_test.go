package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidchill/backend/internal/models"
)

type inMemoryAnnouncementStore struct {
	items []models.Announcement
}

func (s *inMemoryAnnouncementStore) Create(_ context.Context, announcement models.Announcement) error {
	s.items = append(s.items, announcement)
	return nil
}

func (s *inMemoryAnnouncementStore) ListForUser(_ context.Context, userID string) ([]models.Announcement, error) {
	var out []models.Announcement
	for _, item := range s.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func TestAnnouncementHandlerCreateAndList(t *testing.T) {
	manager, _ := newTestSessionManager()
	store := &inMemoryAnnouncementStore{}
	handler := AnnouncementHandler{Announcements: store, Sessions: manager}

	req := authorizedRequest(t, manager, "creator", http.MethodPost, "/api/v1/announcements", addAnnouncementRequest{Message: "New video on Friday"})
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/announcements?userId=creator", nil)
	rec = httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Announcements []announcementItem `json:"announcements"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Announcements) != 1 || resp.Announcements[0].Message != "New video on Friday" {
		t.Fatalf("unexpected announcements %+v", resp.Announcements)
	}
}

func TestAnnouncementHandlerCreateRequiresMessage(t *testing.T) {
	manager, _ := newTestSessionManager()
	handler := AnnouncementHandler{Announcements: &inMemoryAnnouncementStore{}, Sessions: manager}

	req := authorizedRequest(t, manager, "creator", http.MethodPost, "/api/v1/announcements", addAnnouncementRequest{})
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAnnouncementHandlerReactions(t *testing.T) {
	manager, _ := newTestSessionManager()
	engagements := &recordingEngagements{}
	handler := AnnouncementHandler{Engagements: engagements, Sessions: manager}

	req := authorizedRequest(t, manager, "viewer", http.MethodPost, "/api/v1/announcements/like", announcementActionRequest{ID: "ann-1"})
	rec := httptest.NewRecorder()
	handler.Like(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	req = authorizedRequest(t, manager, "viewer", http.MethodPost, "/api/v1/announcements/dislike", announcementActionRequest{ID: "ann-1"})
	rec = httptest.NewRecorder()
	handler.Dislike(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	want := []string{
		"announcement/ann-1/viewer/like",
		"announcement/ann-1/viewer/dislike",
	}
	if len(engagements.applied) != len(want) {
		t.Fatalf("unexpected engagement calls %v", engagements.applied)
	}
	for i, call := range want {
		if engagements.applied[i] != call {
			t.Fatalf("expected call %q got %q", call, engagements.applied[i])
		}
	}
}
