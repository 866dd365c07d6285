package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

type inMemoryFollowStore struct {
	pairs map[string]bool
}

func newInMemoryFollowStore() *inMemoryFollowStore {
	return &inMemoryFollowStore{pairs: make(map[string]bool)}
}

func followKey(followerID, followingID string) string {
	return followerID + "->" + followingID
}

func (s *inMemoryFollowStore) Toggle(_ context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, repositories.ErrSelfFollow
	}
	key := followKey(followerID, followingID)
	if s.pairs[key] {
		delete(s.pairs, key)
		return false, nil
	}
	s.pairs[key] = true
	return true, nil
}

func (s *inMemoryFollowStore) Delete(_ context.Context, followerID, followingID string) error {
	key := followKey(followerID, followingID)
	if !s.pairs[key] {
		return repositories.ErrNotFound
	}
	delete(s.pairs, key)
	return nil
}

func (s *inMemoryFollowStore) Exists(_ context.Context, followerID, followingID string) (bool, error) {
	return s.pairs[followKey(followerID, followingID)], nil
}

func (s *inMemoryFollowStore) CountFollowers(_ context.Context, userID string) (int64, error) {
	var count int64
	for key, ok := range s.pairs {
		if ok && strings.HasSuffix(key, "->"+userID) {
			count++
		}
	}
	return count, nil
}

func (s *inMemoryFollowStore) ListFollowing(_ context.Context, _ string) ([]models.User, error) {
	return nil, nil
}

type staticStats struct {
	stats models.ChannelStats
}

func (s staticStats) DashboardStats(_ context.Context, _ string) (models.ChannelStats, error) {
	return s.stats, nil
}

func TestUserHandlerFollowToggle(t *testing.T) {
	manager, _ := newTestSessionManager()
	follows := newInMemoryFollowStore()
	handler := UserHandler{Follows: follows, Sessions: manager}

	req := authorizedRequest(t, manager, "viewer", http.MethodPost, "/api/v1/users/follow", followRequest{FollowingID: "creator"})
	rec := httptest.NewRecorder()
	handler.Follow(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp struct {
		Success   bool `json:"success"`
		Following bool `json:"following"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Following {
		t.Fatal("expected first toggle to follow")
	}

	req = authorizedRequest(t, manager, "viewer", http.MethodPost, "/api/v1/users/follow", followRequest{FollowingID: "creator"})
	rec = httptest.NewRecorder()
	handler.Follow(rec, req)

	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Following {
		t.Fatal("expected second toggle to unfollow")
	}
}

func TestUserHandlerFollowSelf(t *testing.T) {
	manager, _ := newTestSessionManager()
	handler := UserHandler{Follows: newInMemoryFollowStore(), Sessions: manager}

	req := authorizedRequest(t, manager, "viewer", http.MethodPost, "/api/v1/users/follow", followRequest{FollowingID: "viewer"})
	rec := httptest.NewRecorder()
	handler.Follow(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestUserHandlerUnfollow(t *testing.T) {
	manager, _ := newTestSessionManager()
	follows := newInMemoryFollowStore()
	follows.pairs[followKey("viewer", "creator")] = true
	handler := UserHandler{Follows: follows, Sessions: manager}

	req := authorizedRequest(t, manager, "viewer", http.MethodPost, "/api/v1/users/unfollow", followRequest{FollowingID: "creator"})
	rec := httptest.NewRecorder()
	handler.Unfollow(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if follows.pairs[followKey("viewer", "creator")] {
		t.Fatal("expected follow pair to be removed")
	}
}

func TestUserHandlerChannel(t *testing.T) {
	manager, _ := newTestSessionManager()
	users := newInMemoryUserStore()
	users.users["creator@example.com"] = models.User{ID: "creator", Name: "Creator", Handle: "creator"}

	videos := newInMemoryVideoStore()
	videos.videos["pub"] = models.Video{ID: "pub", UserID: "creator", Publish: true}
	videos.videos["draft"] = models.Video{ID: "draft", UserID: "creator"}

	follows := newInMemoryFollowStore()
	follows.pairs[followKey("viewer", "creator")] = true

	handler := UserHandler{Users: users, Follows: follows, Videos: videos, Sessions: manager}

	req := authorizedRequest(t, manager, "viewer", http.MethodGet, "/api/v1/users/channel?userId=creator", nil)
	rec := httptest.NewRecorder()
	handler.Channel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp channelResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.ID != "creator" {
		t.Fatalf("unexpected channel user %+v", resp.User)
	}
	if !resp.HasFollowed {
		t.Fatal("expected hasFollowed=true")
	}
	if resp.Followers != 1 {
		t.Fatalf("expected 1 follower got %d", resp.Followers)
	}
	if len(resp.Videos) != 1 || resp.Videos[0].ID != "pub" {
		t.Fatalf("expected only published videos, got %+v", resp.Videos)
	}
}

func TestUserHandlerDashboard(t *testing.T) {
	manager, _ := newTestSessionManager()
	users := newInMemoryUserStore()
	users.users["creator@example.com"] = models.User{ID: "creator", Name: "Creator"}

	videos := newInMemoryVideoStore()
	videos.videos["pub"] = models.Video{ID: "pub", UserID: "creator", Publish: true}
	videos.videos["draft"] = models.Video{ID: "draft", UserID: "creator"}

	stats := staticStats{stats: models.ChannelStats{TotalViews: 42, TotalLikes: 7, TotalFollowers: 3}}

	handler := UserHandler{Users: users, Videos: videos, Stats: stats, Sessions: manager}

	req := authorizedRequest(t, manager, "creator", http.MethodGet, "/api/v1/users/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp dashboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalViews != 42 || resp.TotalLikes != 7 || resp.TotalFollowers != 3 {
		t.Fatalf("unexpected stats %+v", resp)
	}
	if len(resp.Videos) != 2 {
		t.Fatalf("expected dashboard to include drafts, got %d videos", len(resp.Videos))
	}
}

func TestUserHandlerDashboardRequiresSession(t *testing.T) {
	manager, _ := newTestSessionManager()
	handler := UserHandler{Sessions: manager}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.Dashboard(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerUpdate(t *testing.T) {
	manager, _ := newTestSessionManager()
	users := newInMemoryUserStore()
	users.users["creator@example.com"] = models.User{ID: "creator", Name: "Creator"}
	handler := UserHandler{Users: users, Sessions: manager}

	handle := "newhandle"
	description := "About my channel"
	req := authorizedRequest(t, manager, "creator", http.MethodPost, "/api/v1/users/update", updateUserRequest{Handle: &handle, Description: &description})
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	updated, err := users.FindByID(context.Background(), "creator")
	if err != nil {
		t.Fatalf("find updated user: %v", err)
	}
	if updated.Handle != "newhandle" || updated.Description != "About my channel" {
		t.Fatalf("unexpected user %+v", updated)
	}
}

func TestUserHandlerUpdateHandleConflict(t *testing.T) {
	manager, _ := newTestSessionManager()
	users := &conflictingUserStore{inMemoryUserStore: newInMemoryUserStore()}
	users.users["creator@example.com"] = models.User{ID: "creator", Name: "Creator"}
	handler := UserHandler{Users: users, Sessions: manager}

	handle := "taken"
	req := authorizedRequest(t, manager, "creator", http.MethodPost, "/api/v1/users/update", updateUserRequest{Handle: &handle})
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
}

type conflictingUserStore struct {
	*inMemoryUserStore
}

func (s *conflictingUserStore) Update(_ context.Context, _ models.User) error {
	return repositories.ErrConflict
}

func TestUserHandlerFollowInvalidBody(t *testing.T) {
	manager, _ := newTestSessionManager()
	handler := UserHandler{Follows: newInMemoryFollowStore(), Sessions: manager}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/follow", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	handler.Follow(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}
