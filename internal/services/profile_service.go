package services

import (
	"context"
	"strings"

	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/security"
)

// ProfileRepository is the interface that wraps user data access needed by
// the profile service
type ProfileRepository interface {
	// Method GetByID retrieves a user by ID.
	GetByID(ctx context.Context, userID int) (*models.User, error)
	// Method Update applies a partial update to a user. Nil fields are
	// left unchanged.
	Update(ctx context.Context, userID int, name, passwordHash *string, role *models.Role) error
}

// profileService handles the acting user's own profile
type profileService struct {
	userRepo ProfileRepository
	hasher   *security.PasswordHasher
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo ProfileRepository, hasher *security.PasswordHasher) *profileService {
	return &profileService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Get returns the acting user's profile
func (s *profileService) Get(ctx context.Context, userID int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// Update changes the acting user's name and/or password
func (s *profileService) Update(ctx context.Context, actingUser *models.User, req *models.UpdateProfileRequest) (*models.User, error) {
	var name *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, apperror.NewValidation("name cannot be empty")
		}
		name = &trimmed
	}

	var passwordHash *string
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, apperror.Wrap(apperror.Internal, "failed to hash password", err)
		}
		passwordHash = &hash
	}

	if name == nil && passwordHash == nil {
		return nil, apperror.NewValidation("nothing to update")
	}

	if err := s.userRepo.Update(ctx, actingUser.ID, name, passwordHash, nil); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, actingUser.ID)
}
