package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

func TestManagerIssueCredentialsPersistsOpaqueToken(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewManager(30*24*time.Hour, "secret", store)

	token, err := manager.Issue(context.Background(), MethodCredentials, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if strings.Count(token, ".") == 2 {
		t.Fatalf("expected opaque token, got signed token %q", token)
	}
	if !store.Has(token) {
		t.Fatal("expected session to be persisted")
	}

	userID, err := manager.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1 got %q", userID)
	}
}

func TestManagerIssueFederatedSignsToken(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewManager(time.Hour, "secret", store)

	token, err := manager.Issue(context.Background(), MethodFederated, "user-2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected signed token, got %q", token)
	}
	if store.Has(token) {
		t.Fatal("federated sessions must not be persisted")
	}

	userID, err := manager.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "user-2" {
		t.Fatalf("expected user-2 got %q", userID)
	}
}

func TestManagerIssueRequiresUserID(t *testing.T) {
	manager := NewManager(time.Hour, "secret", NewInMemorySessionStore())

	if _, err := manager.Issue(context.Background(), MethodCredentials, ""); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID got %v", err)
	}
}

func TestManagerIssueWrapsStoreFailure(t *testing.T) {
	manager := NewManager(time.Hour, "secret", failingSessionStore{})

	_, err := manager.Issue(context.Background(), MethodCredentials, "user-1")
	if !errors.Is(err, ErrSessionCreationFailed) {
		t.Fatalf("expected ErrSessionCreationFailed got %v", err)
	}
}

func TestManagerValidateExpiredOpaqueSession(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewManager(time.Hour, "secret", store)

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager.nowFunc = func() time.Time { return base }

	token, err := manager.Issue(context.Background(), MethodCredentials, "user-3")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.nowFunc = func() time.Time { return base.Add(2 * time.Hour) }

	if _, err := manager.Validate(context.Background(), token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired got %v", err)
	}
	if store.Has(token) {
		t.Fatal("expected expired session row to be removed")
	}
}

func TestManagerValidateExpiredSignedToken(t *testing.T) {
	manager := NewManager(time.Hour, "secret", NewInMemorySessionStore())

	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager.nowFunc = func() time.Time { return base }

	token, err := manager.Issue(context.Background(), MethodFederated, "user-4")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.nowFunc = func() time.Time { return base.Add(2 * time.Hour) }

	if _, err := manager.Validate(context.Background(), token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired got %v", err)
	}
}

func TestManagerValidateRejectsForeignSignature(t *testing.T) {
	issuer := NewManager(time.Hour, "secret-a", NewInMemorySessionStore())
	validator := NewManager(time.Hour, "secret-b", NewInMemorySessionStore())

	token, err := issuer.Issue(context.Background(), MethodFederated, "user-5")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := validator.Validate(context.Background(), token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}
}

func TestManagerRevokeRemovesOpaqueSession(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewManager(time.Hour, "secret", store)

	token, err := manager.Issue(context.Background(), MethodCredentials, "user-6")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.Revoke(context.Background(), token)

	if store.Has(token) {
		t.Fatal("expected session to be revoked")
	}
	if _, err := manager.Validate(context.Background(), token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound got %v", err)
	}
}

type failingSessionStore struct{}

func (failingSessionStore) Save(context.Context, models.Session) error {
	return errors.New("store unavailable")
}

func (failingSessionStore) Find(context.Context, string) (models.Session, error) {
	return models.Session{}, repositories.ErrNotFound
}

func (failingSessionStore) Delete(context.Context, string) error {
	return nil
}
