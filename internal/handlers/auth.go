package handlers

import (
	"log"
	"net/http"
	"strings"

	"finance_navigator/internal/auth"
	apperrors "finance_navigator/internal/errors"
	"finance_navigator/internal/middleware"
	"finance_navigator/internal/models"
	"finance_navigator/internal/repository"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	userRepo       *repository.UserRepository
	sessionManager *auth.SessionManager
	sessionMaxAge  int
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userRepo *repository.UserRepository, sm *auth.SessionManager, sessionMaxAge int, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		userRepo:       userRepo,
		sessionManager: sm,
		sessionMaxAge:  sessionMaxAge,
		secureCookies:  secureCookies,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a new user and logs them in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, apperrors.Validation("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, apperrors.Validation("password must be at least 8 characters"))
		return
	}
	if req.Name == "" {
		writeError(w, apperrors.Validation("name is required"))
		return
	}

	existing, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		writeError(w, apperrors.Internal("checking email", err))
		return
	}
	if existing != nil {
		writeError(w, apperrors.Conflict("email is already registered"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, apperrors.Internal("hashing password", err))
		return
	}

	user := &models.User{Email: req.Email, PasswordHash: hash, Name: req.Name}
	if _, err := h.userRepo.Create(user); err != nil {
		writeError(w, apperrors.Internal("creating user", err))
		return
	}

	h.startSession(w, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, apperrors.Validation("email and password are required"))
		return
	}

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		writeError(w, apperrors.Internal("finding user", err))
		return
	}
	// Same response for unknown email and wrong password.
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
		return
	}

	h.startSession(w, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, user *models.User) {
	session, err := h.sessionManager.Create(user.ID)
	if err != nil {
		writeError(w, apperrors.Internal("creating session", err))
		return
	}
	middleware.SetSessionCookie(w, session.ID, h.sessionMaxAge, h.secureCookies)
	writeJSON(w, http.StatusOK, user)
}

// Logout ends the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessionManager.Delete(cookie.Value); err != nil {
			log.Printf("Failed to delete session: %v", err)
		}
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetUser(r))
}
