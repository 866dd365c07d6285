package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

type mapUserFinder map[string]models.User

func (m mapUserFinder) FindByEmail(_ context.Context, email string) (models.User, error) {
	user, ok := m[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func TestVerifierVerify(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	finder := mapUserFinder{
		"known@example.com":     {ID: "user-1", Email: "known@example.com", Password: string(hashed)},
		"federated@example.com": {ID: "user-2", Email: "federated@example.com"},
	}
	verifier := NewVerifier(finder)

	t.Run("success", func(t *testing.T) {
		user, err := verifier.Verify(context.Background(), "known@example.com", "correct horse")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if user.ID != "user-1" {
			t.Fatalf("expected user-1 got %q", user.ID)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := verifier.Verify(context.Background(), "nobody@example.com", "whatever"); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound got %v", err)
		}
	})

	t.Run("federated account without password", func(t *testing.T) {
		if _, err := verifier.Verify(context.Background(), "federated@example.com", "whatever"); !errors.Is(err, ErrNoPasswordSet) {
			t.Fatalf("expected ErrNoPasswordSet got %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := verifier.Verify(context.Background(), "known@example.com", "incorrect horse"); !errors.Is(err, ErrWrongPassword) {
			t.Fatalf("expected ErrWrongPassword got %v", err)
		}
	})
}
