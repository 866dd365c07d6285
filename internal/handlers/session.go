package handlers

import (
	"context"
	"net/http"
	"strings"
)

// requestToken extracts the session token from the Authorization header or,
// failing that, from the session cookie.
func requestToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return header
	}

	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// authenticate resolves the caller's user id from the request's session token.
// The second return value reports whether a valid session was presented.
func authenticate(ctx context.Context, sessions SessionManager, r *http.Request) (string, bool) {
	if sessions == nil {
		return "", false
	}

	token := requestToken(r)
	if token == "" {
		return "", false
	}

	userID, err := sessions.Validate(ctx, token)
	if err != nil || userID == "" {
		return "", false
	}
	return userID, true
}
