// Package middleware provides HTTP middleware for the finance navigator.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"finance_navigator/internal/auth"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey ContextKey = "user"

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session_id"
)

// AuthMiddleware handles authentication for protected routes.
type AuthMiddleware struct {
	sessionManager *auth.SessionManager
	userRepo       *repository.UserRepository
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(sm *auth.SessionManager, userRepo *repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		sessionManager: sm,
		userRepo:       userRepo,
	}
}

// LoadUser is middleware that loads the current user from the session cookie.
// It does not require authentication - just loads the user if present.
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			// No session cookie, continue without user
			next.ServeHTTP(w, r)
			return
		}

		// Validate session
		userID, err := m.sessionManager.Validate(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		// Load user
		user, err := m.userRepo.GetByID(userID)
		if err != nil || user == nil {
			ClearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		// Add user to context
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth is middleware that requires authentication.
// The API is consumed by the SPA, so failures are JSON, not redirects.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser returns the authenticated user from the request context, or nil.
func GetUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(UserContextKey).(*models.User)
	return user
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(w http.ResponseWriter, sessionID string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
