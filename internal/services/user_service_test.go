package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/security"
	"golang.org/x/crypto/bcrypt"
)

var (
	adminActor = &models.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin}
	userActor  = &models.User{ID: 2, Name: "User", Email: "user@example.com", Role: models.RoleUser}
)

func TestCanModify(t *testing.T) {
	tests := []struct {
		name     string
		actor    *models.User
		targetID int
		expected bool
	}{
		{name: "admin may modify anyone", actor: adminActor, targetID: 99, expected: true},
		{name: "user may modify self", actor: userActor, targetID: 2, expected: true},
		{name: "user may not modify others", actor: userActor, targetID: 3, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, canModify(tt.actor, tt.targetID))
		})
	}
}

func TestUserService_List(t *testing.T) {
	all := []models.User{
		{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin},
		{ID: 2, Email: "user@example.com", Role: models.RoleUser},
	}
	userRepo := &mockUserRepo{
		getAllFn: func(ctx context.Context) ([]models.User, error) {
			return all, nil
		},
	}
	svc := NewUserService(userRepo, security.NewPasswordHasher(bcrypt.MinCost))

	users, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, all, users)
}

func TestUserService_Create(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)

	tests := []struct {
		name          string
		req           *models.CreateUserRequest
		expectedError apperror.Kind
		expectedRole  models.Role
	}{
		{
			name:         "defaults to user role",
			req:          &models.CreateUserRequest{Name: "John", Email: "john@example.com", Password: "secret1"},
			expectedRole: models.RoleUser,
		},
		{
			name:         "explicit admin role",
			req:          &models.CreateUserRequest{Name: "Root", Email: "root@example.com", Password: "secret1", Role: models.RoleAdmin},
			expectedRole: models.RoleAdmin,
		},
		{
			name:          "invalid role",
			req:           &models.CreateUserRequest{Name: "John", Email: "john@example.com", Password: "secret1", Role: "superuser"},
			expectedError: apperror.Validation,
		},
		{
			name:          "missing name",
			req:           &models.CreateUserRequest{Name: " ", Email: "john@example.com", Password: "secret1"},
			expectedError: apperror.Validation,
		},
		{
			name:          "invalid email",
			req:           &models.CreateUserRequest{Name: "John", Email: "bad", Password: "secret1"},
			expectedError: apperror.Validation,
		},
		{
			name:          "missing password",
			req:           &models.CreateUserRequest{Name: "John", Email: "john@example.com", Password: ""},
			expectedError: apperror.Validation,
		},
		{
			name:          "short password",
			req:           &models.CreateUserRequest{Name: "John", Email: "john@example.com", Password: "12345"},
			expectedError: apperror.Validation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepo{}
			svc := NewUserService(userRepo, hasher)

			user, err := svc.Create(context.Background(), tt.req)

			if tt.expectedError != 0 {
				assert.True(t, apperror.Is(err, tt.expectedError))
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, tt.expectedRole, user.Role)
			assert.True(t, hasher.Verify(tt.req.Password, user.PasswordHash))
		})
	}
}

func TestUserService_Update(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)

	newName := "Renamed"
	newPassword := "newpass1"
	adminRole := models.RoleAdmin
	badRole := models.Role("superuser")

	tests := []struct {
		name          string
		actor         *models.User
		targetID      int
		req           *models.UpdateUserRequest
		expectedError apperror.Kind
	}{
		{
			name:     "admin updates another user",
			actor:    adminActor,
			targetID: 2,
			req:      &models.UpdateUserRequest{Name: &newName},
		},
		{
			name:     "owner updates own account",
			actor:    userActor,
			targetID: 2,
			req:      &models.UpdateUserRequest{Name: &newName, Password: &newPassword},
		},
		{
			name:          "non-owner non-admin is forbidden",
			actor:         userActor,
			targetID:      3,
			req:           &models.UpdateUserRequest{Name: &newName},
			expectedError: apperror.Forbidden,
		},
		{
			name:     "admin changes a role",
			actor:    adminActor,
			targetID: 2,
			req:      &models.UpdateUserRequest{Role: &adminRole},
		},
		{
			name:          "non-admin may not change own role",
			actor:         userActor,
			targetID:      2,
			req:           &models.UpdateUserRequest{Role: &adminRole},
			expectedError: apperror.Forbidden,
		},
		{
			name:          "invalid role value",
			actor:         adminActor,
			targetID:      2,
			req:           &models.UpdateUserRequest{Role: &badRole},
			expectedError: apperror.Validation,
		},
		{
			name:          "empty request",
			actor:         adminActor,
			targetID:      2,
			req:           &models.UpdateUserRequest{},
			expectedError: apperror.Validation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := &models.User{ID: tt.targetID}
			userRepo := &mockUserRepo{
				updateFn: func(ctx context.Context, userID int, name, passwordHash *string, role *models.Role) error {
					assert.Equal(t, tt.targetID, userID)
					return nil
				},
				getByIDFn: func(ctx context.Context, userID int) (*models.User, error) {
					return updated, nil
				},
			}
			svc := NewUserService(userRepo, hasher)

			user, err := svc.Update(context.Background(), tt.actor, tt.targetID, tt.req)

			if tt.expectedError != 0 {
				assert.True(t, apperror.Is(err, tt.expectedError))
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, updated, user)
			}
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	tests := []struct {
		name          string
		actor         *models.User
		targetID      int
		expectedError apperror.Kind
	}{
		{name: "admin deletes another user", actor: adminActor, targetID: 2},
		{name: "owner deletes own account", actor: userActor, targetID: 2},
		{name: "non-owner non-admin is forbidden", actor: userActor, targetID: 3, expectedError: apperror.Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleteCalled := false
			userRepo := &mockUserRepo{
				deleteFn: func(ctx context.Context, userID int) error {
					deleteCalled = true
					assert.Equal(t, tt.targetID, userID)
					return nil
				},
			}
			svc := NewUserService(userRepo, security.NewPasswordHasher(bcrypt.MinCost))

			err := svc.Delete(context.Background(), tt.actor, tt.targetID)

			if tt.expectedError != 0 {
				assert.True(t, apperror.Is(err, tt.expectedError))
				assert.False(t, deleteCalled)
			} else {
				assert.NoError(t, err)
				assert.True(t, deleteCalled)
			}
		})
	}
}
