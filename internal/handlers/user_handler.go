package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/user-service/internal/middleware"
	"github.com/userhub/user-service/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user management
// business logic.
type UserService interface {
	// Method List returns all users. Restricted to admins by route wiring.
	List(ctx context.Context) ([]models.User, error)
	// Method Create provisions a user, optionally with an explicit role.
	// Restricted to admins by route wiring.
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	// Method Update modifies a target user under the owner-or-admin rule.
	Update(ctx context.Context, actingUser *models.User, targetID int, req *models.UpdateUserRequest) (*models.User, error)
	// Method Delete removes a target user under the owner-or-admin rule.
	Delete(ctx context.Context, actingUser *models.User, targetID int) error
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers user management routes. Listing and creation are
// admin-only; update and delete enforce the owner-or-admin rule in the
// service, so they only need authentication here.
func (h *UserHandler) RegisterRoutes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/users", h.List)
			r.Post("/users", h.Create)
		})

		r.Put("/users/{id}", h.Update)
		r.Delete("/users/{id}", h.Delete)
	})
}

// List handles GET /users
// @Summary List all users
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.User "Users"
// @Failure 401 {object} map[string]string "Unauthenticated"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// Create handles POST /users
// @Summary Create a user
// @Description Provision a user account, optionally with an explicit role.
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateUserRequest true "User to create"
// @Success 201 {object} models.User "Created user"
// @Failure 400 {object} map[string]string "Validation error or email already exists"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, user)
}

// Update handles PUT /users/{id}
// @Summary Update a user
// @Description Admins may update any user; a user may update only itself. Role changes are admin-only.
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User "Updated user"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actingUser, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), actingUser, targetID, &req)
	if err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/{id}
// @Summary Delete a user
// @Description Admins may delete any user; a user may delete only itself. Deletion is immediate.
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "User deleted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actingUser, ok := middleware.GetUser(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userService.Delete(r.Context(), actingUser, targetID); err != nil {
		h.RespondAppError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "user deleted successfully"})
}
