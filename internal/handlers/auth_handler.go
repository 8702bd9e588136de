package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/user-service/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication
// business logic.
type AuthService interface {
	// Method Signup validates the request, creates the user with role
	// "user" and issues a session token.
	//
	// If validation fails or the email is already registered, an error is
	// returned together with a "nil" response.
	Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	// Method Login authenticates the user and issues a session token.
	//
	// An unknown email and a wrong password return the identical error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	// Method ForgotPassword starts the password reset flow. The returned
	// plaintext token is non-empty only when a token was generated and
	// delivered; it is echoed to clients only in development mode.
	ForgotPassword(ctx context.Context, email string) (string, error)
	// Method ResetPassword consumes a reset token and replaces the
	// user's password.
	ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
	development bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger, development bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		development: development,
	}
}

// RegisterRoutes registers all auth handler routes.
// Note: This assumes the router is already scoped to /api/v1.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Put("/reset-password/{token}", h.ResetPassword)
	})
}

// Signup handles POST /auth/signup
// @Summary Register a new user
// @Description Create a user account with name, email and password. Returns a session token and the user view.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.SignupRequest true "Signup request"
// @Success 201 {object} models.AuthResponse "User created"
// @Failure 400 {object} map[string]string "Validation error or email already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/login
// @Summary Login user
// @Description Authenticate with email and password. Returns a session token and the user view.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Logout handles POST /auth/logout
// @Summary Logout user
// @Description Tokens are bearer and self-expiring; this endpoint only signals the client to discard its stored token.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string "Logout successful"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// ForgotPassword handles POST /auth/forgot-password
// @Summary Request a password reset
// @Description Sends a reset link when the email is registered. The response does not reveal whether the account exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ForgotPasswordRequest true "Forgot password request"
// @Success 200 {object} map[string]string "Generic success message"
// @Failure 400 {object} map[string]string "Missing email"
// @Failure 500 {object} map[string]string "Email delivery failed"
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resetToken, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	resp := map[string]string{
		"message": "if the email exists, you will receive a password reset link",
	}
	// Diagnostic echo for testing, never enabled in production
	if h.development && resetToken != "" {
		resp["resetToken"] = resetToken
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// ResetPassword handles PUT /auth/reset-password/{token}
// @Summary Reset password with a token
// @Description Consumes a single-use reset token and replaces the password.
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param request body models.ResetPasswordRequest true "New password"
// @Success 200 {object} map[string]string "Password changed"
// @Failure 400 {object} map[string]string "Invalid or expired token"
// @Router /auth/reset-password/{token} [put]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.authService.ResetPassword(r.Context(), token, req.Password); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}
