package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

// Login methods recognised by the session manager. Credential logins receive
// server-persisted opaque tokens so they can be revoked; federated logins
// carry their expiry inside a signed token and persist nothing.
const (
	MethodCredentials = "credentials"
	MethodFederated   = "federated"
)

var (
	// ErrSessionNotFound indicates the provided token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates the session exists but its expiry has passed.
	ErrSessionExpired = errors.New("session expired")
	// ErrMissingUserID indicates an issue request without an authenticated user id.
	ErrMissingUserID = errors.New("no user id for session")
	// ErrSessionCreationFailed indicates the persistence layer refused to create the session row.
	ErrSessionCreationFailed = errors.New("session not created")
)

// SessionStore persists opaque credential sessions so they can be revoked and
// survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Find(ctx context.Context, token string) (models.Session, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues and validates session tokens, branching on the login method
// used: opaque persisted tokens for credential logins, stateless signed
// tokens for federated logins.
type Manager struct {
	ttl       time.Duration
	jwtSecret []byte

	store   SessionStore
	nowFunc func() time.Time
}

// NewManager constructs a Manager issuing sessions with the provided TTL.
func NewManager(ttl time.Duration, jwtSecret string, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	return &Manager{
		ttl:       ttl,
		jwtSecret: []byte(jwtSecret),
		store:     store,
	}
}

// Issue mints a session token for the given user. The method decides the
// encoding: MethodCredentials persists an opaque random token, anything else
// falls through to the stateless signed encoding.
func (m *Manager) Issue(ctx context.Context, method, userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingUserID
	}

	expires := m.now().Add(m.ttl)

	if method == MethodCredentials {
		token, err := randomToken()
		if err != nil {
			return "", err
		}

		session := models.Session{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expires,
		}
		if err := m.store.Save(ctx, session); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSessionCreationFailed, err)
		}
		return token, nil
	}

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(m.now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign federated session token: %w", err)
	}
	return signed, nil
}

// Validate resolves a token to the user it belongs to. Signed tokens carry
// their own expiry; opaque tokens are checked against the store and expired
// rows are removed on sight.
func (m *Manager) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}

	if strings.Count(token, ".") == 2 {
		return m.validateSigned(token)
	}

	session, err := m.store.Find(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("find session: %w", err)
	}

	if m.now().After(session.ExpiresAt) {
		_ = m.store.Delete(ctx, token)
		return "", ErrSessionExpired
	}

	return session.UserID, nil
}

// Revoke removes an opaque session token. Signed tokens cannot be revoked and
// simply age out.
func (m *Manager) Revoke(ctx context.Context, token string) {
	if token == "" || strings.Count(token, ".") == 2 {
		return
	}
	_ = m.store.Delete(ctx, token)
}

func (m *Manager) validateSigned(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.jwtSecret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionExpired
		}
		return "", ErrSessionNotFound
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrSessionNotFound
	}

	return claims.Subject, nil
}

func (m *Manager) now() time.Time {
	if m.nowFunc != nil {
		return m.nowFunc()
	}
	return time.Now().UTC()
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
