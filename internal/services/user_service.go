package services

import (
	"context"
	"strings"
	"time"

	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/security"
)

// UserAdminRepository is the interface that wraps user data access needed by
// the user management service
type UserAdminRepository interface {
	// Method GetAll retrieves all users.
	GetAll(ctx context.Context) ([]models.User, error)
	// Method GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method Create inserts a new user. It fails with a duplicate-email
	// error when the normalized email is already registered.
	Create(ctx context.Context, user *models.User) error
	// Method Update applies a partial update. Nil fields are left unchanged.
	Update(ctx context.Context, userID int, name, passwordHash *string, role *models.Role) error
	// Method Delete removes a user immediately.
	Delete(ctx context.Context, userID int) error
}

// userService handles user management: listing, provisioning, updating and
// deleting accounts under the owner-or-admin rule
type userService struct {
	userRepo UserAdminRepository
	hasher   *security.PasswordHasher
	now      func() time.Time
}

// NewUserService creates a new user management service
func NewUserService(userRepo UserAdminRepository, hasher *security.PasswordHasher) *userService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
		now:      time.Now,
	}
}

// canModify implements the owner-or-admin rule: an action on a target user
// is permitted when the actor is an admin or the target itself
func canModify(actingUser *models.User, targetID int) bool {
	return actingUser.Role == models.RoleAdmin || actingUser.ID == targetID
}

// List returns all users. Route wiring restricts this to admins.
func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.GetAll(ctx)
}

// Create provisions a user, optionally with an explicit role. Route wiring
// restricts this to admins, which is the out-of-band path that may create
// admin accounts directly.
func (s *userService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	normalizedEmail := normalizeEmail(req.Email)

	if name == "" {
		return nil, apperror.NewValidation("name is required")
	}
	if !emailRegex.MatchString(normalizedEmail) {
		return nil, apperror.NewValidation("valid email is required")
	}
	if req.Password == "" {
		return nil, apperror.NewValidation("password is required")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperror.NewValidation("invalid role")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to hash password", err)
	}

	user := &models.User{
		Name:         name,
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Update modifies a target user. The actor must be an admin or the target
// itself; only an admin may change the role, so a non-admin can never
// elevate itself.
func (s *userService) Update(ctx context.Context, actingUser *models.User, targetID int, req *models.UpdateUserRequest) (*models.User, error) {
	if !canModify(actingUser, targetID) {
		return nil, apperror.New(apperror.Forbidden, "only an admin or the account owner may update this user")
	}

	var name *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, apperror.NewValidation("name cannot be empty")
		}
		name = &trimmed
	}

	var passwordHash *string
	if req.Password != nil && *req.Password != "" {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperror.Wrap(apperror.Internal, "failed to hash password", err)
		}
		passwordHash = &hash
	}

	var role *models.Role
	if req.Role != nil {
		if actingUser.Role != models.RoleAdmin {
			return nil, apperror.New(apperror.Forbidden, "only an admin may change roles")
		}
		if !req.Role.Valid() {
			return nil, apperror.NewValidation("invalid role")
		}
		role = req.Role
	}

	if name == nil && passwordHash == nil && role == nil {
		return nil, apperror.NewValidation("nothing to update")
	}

	if err := s.userRepo.Update(ctx, targetID, name, passwordHash, role); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, targetID)
}

// Delete removes a target user. The actor must be an admin or the target
// itself. Deleting a user immediately invalidates any outstanding tokens
// for them, since authentication re-resolves the user on every request.
func (s *userService) Delete(ctx context.Context, actingUser *models.User, targetID int) error {
	if !canModify(actingUser, targetID) {
		return apperror.New(apperror.Forbidden, "only an admin or the account owner may delete this user")
	}

	return s.userRepo.Delete(ctx, targetID)
}
