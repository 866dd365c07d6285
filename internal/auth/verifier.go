package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

var (
	// ErrUserNotFound indicates no account exists for the supplied email.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoPasswordSet indicates the account was created through a federated
	// provider and holds no password hash.
	ErrNoPasswordSet = errors.New("no password set for account")
	// ErrWrongPassword indicates the supplied password does not match the
	// stored hash.
	ErrWrongPassword = errors.New("wrong password")
)

// UserFinder is the read-only lookup the verifier needs.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Verifier checks email/password credentials against stored password hashes.
type Verifier struct {
	users UserFinder
}

// NewVerifier constructs a credential verifier over the provided user lookup.
func NewVerifier(users UserFinder) *Verifier {
	if users == nil {
		panic("auth: user finder must not be nil")
	}
	return &Verifier{users: users}
}

// Verify fetches the account for email and compares password against its
// bcrypt hash. It has no side effects beyond the read.
func (v *Verifier) Verify(ctx context.Context, email, password string) (models.User, error) {
	user, err := v.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.Password == "" {
		return models.User{}, ErrNoPasswordSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, ErrWrongPassword
	}

	return user, nil
}
