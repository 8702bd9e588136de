package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/user-service/internal/middleware"
	"github.com/userhub/user-service/internal/models"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for profile business logic.
type ProfileService interface {
	// Method Get returns the acting user's profile.
	Get(ctx context.Context, userID int) (*models.User, error)
	// Method Update changes the acting user's name and/or password.
	Update(ctx context.Context, actingUser *models.User, req *models.UpdateProfileRequest) (*models.User, error)
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers profile routes behind the authentication middleware
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/users/profile", h.Get)
		r.Put("/users/profile", h.Update)
	})
}

// Get handles GET /users/profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.User "Profile"
// @Failure 401 {object} map[string]string "Unauthenticated"
// @Router /users/profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	actingUser, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.profileService.Get(r.Context(), actingUser.ID)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Update handles PUT /users/profile
// @Summary Update own profile
// @Description Change the display name and/or password of the acting user.
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.UpdateProfileRequest true "Profile update"
// @Success 200 {object} models.User "Updated profile"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthenticated"
// @Router /users/profile [put]
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	actingUser, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.profileService.Update(r.Context(), actingUser, &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]any{"user": user})
}
