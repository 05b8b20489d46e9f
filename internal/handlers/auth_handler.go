package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	mW "github.com/underbudget/backend/internal/middleware"
	"github.com/underbudget/backend/internal/models"
	"github.com/underbudget/backend/internal/services"
	"go.uber.org/zap"
)

// AuthAPI is the slice of the auth service the HTTP layer needs.
type AuthAPI interface {
	Register(ctx context.Context, req services.RegisterRequest) (string, error)
	Login(ctx context.Context, req services.LoginRequest) (string, error)
	ListTokens(ctx context.Context, userID string) ([]models.Token, error)
	RevokeToken(ctx context.Context, userID, jwtID string) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

type AuthHandler struct {
	service AuthAPI
	l       *zap.Logger
}

func NewAuthHandler(service AuthAPI, l *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, l: l}
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	UserID string `json:"userId"`
}

// TokenResponse carries a freshly issued session token
type TokenResponse struct {
	Token string `json:"token"`
}

// TokensResponse lists the caller's live sessions
type TokensResponse struct {
	Tokens []models.Token `json:"tokens"`
}

// Register creates a user account
// @Summary Register user
// @Description Create a new, unverified user account
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "Registration request"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /users [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, RegisterResponse{UserID: userID})
}

// Login issues a session token
// @Summary Login
// @Description Exchange a username and password for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login request"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /tokens [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

// ListTokens lists the caller's sessions
// @Summary List sessions
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TokensResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /tokens [get]
func (h *AuthHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tokens, err := h.service.ListTokens(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, TokensResponse{Tokens: tokens})
}

// RevokeToken ends one of the caller's sessions
// @Summary Revoke session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Param jwtId path string true "Token id"
// @Success 200
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /tokens/{jwtId} [delete]
func (h *AuthHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	jwtID := chi.URLParam(r, "jwtId")
	if err := h.service.RevokeToken(r.Context(), userID, jwtID); err != nil {
		respondError(w, err)
		return
	}

	// the bearer used for this request is no longer valid
	if current, ok := mW.TokenIDFromContext(r.Context()); ok && current == jwtID {
		h.l.Info("current session revoked", zap.String("user_id", userID), zap.String("jwt_id", jwtID))
	}
	w.WriteHeader(http.StatusOK)
}

// CurrentUser returns the caller's account
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} services.ErrorResponse
// @Router /users/me [get]
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DeleteUser deletes the caller's account with its sessions and grants
// @Summary Delete account
// @Tags Users
// @Security BearerAuth
// @Success 200
// @Failure 401 {object} services.ErrorResponse
// @Router /users/me [delete]
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
