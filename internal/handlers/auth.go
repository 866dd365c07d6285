package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidchill/backend/internal/auth"
	"github.com/vidchill/backend/internal/logging"
	"github.com/vidchill/backend/internal/models"
	"github.com/vidchill/backend/internal/repositories"
)

// sessionCookie is the cookie carrying the session token for browser clients.
const sessionCookie = "session_token"

// AuthHandler implements user authentication endpoints.
type AuthHandler struct {
	Users    UserStore
	Verifier CredentialVerifier
	Sessions SessionManager
	Limiter  RateLimiter
	// SessionTTL sets the session cookie lifetime and must match the TTL the
	// session manager was built with.
	SessionTTL time.Duration
	NowFunc    func() time.Time
}

// SignIn handles POST /api/v1/auth/signin requests.
func (h AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Verifier == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable", "hasVerifier", h.Verifier != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "signin") {
		respondJSON(ctx, w, http.StatusTooManyRequests, result{Success: false, Message: "too many attempts, slow down"})
		return
	}

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signin payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		logger.Warn("signin missing credentials", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "email and password are required"})
		return
	}

	user, err := h.Verifier.Verify(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			logger.Warn("signin unknown user", "email", req.Email)
			respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "User not found or Email does not match"})
		case errors.Is(err, auth.ErrNoPasswordSet):
			logger.Warn("signin against federated-only account", "email", req.Email)
			respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "Invalid Credentials"})
		case errors.Is(err, auth.ErrWrongPassword):
			logger.Warn("signin password mismatch", "userId", user.ID, "email", req.Email)
			respondJSON(ctx, w, http.StatusUnauthorized, result{Success: false, Message: "Wrong password. Please try again"})
		default:
			logger.Error("signin verification failed", "error", err, "email", req.Email)
			respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "unable to sign in, try again later"})
		}
		return
	}

	token, err := h.Sessions.Issue(ctx, auth.MethodCredentials, user.ID)
	if err != nil {
		logger.Error("failed to issue session", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to create session"})
		return
	}

	setSessionCookie(w, token, h.now().Add(h.cookieTTL()))
	respondJSON(ctx, w, http.StatusOK, authResponse{Success: true, Token: token, User: publicProfile(user)})
}

// SignUp handles POST /api/v1/auth/signup requests.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable", "hasUsers", h.Users != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "signup") {
		respondJSON(ctx, w, http.StatusTooManyRequests, result{Success: false, Message: "too many attempts, slow down"})
		return
	}

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		logger.Warn("signup missing fields", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "name, email and password are required"})
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("signup invalid email", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "invalid email address"})
		return
	}

	if len(req.Password) < 6 {
		logger.Warn("signup password too short", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "password must be at least 6 characters"})
		return
	}

	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		respondJSON(ctx, w, http.StatusBadRequest, result{Success: false, Message: "passwords do not match"})
		return
	}

	if _, err := h.Users.FindByEmail(ctx, req.Email); err == nil {
		logger.Warn("signup existing account", "email", req.Email)
		respondJSON(ctx, w, http.StatusConflict, result{Success: false, Message: "User already exists."})
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("signup user lookup failed", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "unable to verify existing accounts"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("signup failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to secure password"})
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Password:  string(hashed),
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("signup conflict", "email", req.Email)
			respondJSON(ctx, w, http.StatusConflict, result{Success: false, Message: "User already exists."})
			return
		}
		logger.Error("signup failed to create user", "error", err, "email", req.Email)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to create account"})
		return
	}

	token, err := h.Sessions.Issue(ctx, auth.MethodCredentials, user.ID)
	if err != nil {
		logger.Error("signup failed to issue session", "error", err, "userId", user.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "failed to create session"})
		return
	}

	setSessionCookie(w, token, now.Add(h.cookieTTL()))
	respondJSON(ctx, w, http.StatusCreated, authResponse{Success: true, Token: token, User: publicProfile(user)})
}

// SignOut handles POST /api/v1/auth/signout requests.
func (h AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if h.Sessions == nil {
		respondJSON(ctx, w, http.StatusInternalServerError, result{Success: false, Message: "session service unavailable"})
		return
	}

	if token := requestToken(r); token != "" {
		h.Sessions.Revoke(ctx, token)
	}

	clearSessionCookie(w)
	respondJSON(ctx, w, http.StatusOK, result{Success: true})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// result is the envelope mutation handlers answer with.
type result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    userProfile `json:"user"`
}

// userProfile is the public shape of an account; the password hash and email
// never leave the server except to the account owner.
type userProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Handle          string `json:"handle,omitempty"`
	Image           string `json:"image,omitempty"`
	BackgroundImage string `json:"backgroundImage,omitempty"`
	Description     string `json:"description,omitempty"`
}

func publicProfile(user models.User) userProfile {
	return userProfile{
		ID:              user.ID,
		Name:            user.Name,
		Handle:          user.Handle,
		Image:           user.Image,
		BackgroundImage: user.BackgroundImage,
		Description:     user.Description,
	}
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h AuthHandler) cookieTTL() time.Duration {
	if h.SessionTTL > 0 {
		return h.SessionTTL
	}
	return 30 * 24 * time.Hour
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
