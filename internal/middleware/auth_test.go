package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/security"
)

// mockUserResolver resolves a fixed set of users by ID
type mockUserResolver struct {
	users map[int]*models.User
}

func (m *mockUserResolver) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if user, ok := m.users[userID]; ok {
		return user, nil
	}
	return nil, apperror.New(apperror.NotFound, "user not found")
}

func TestAuthenticateRequest(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := security.NewTokenGenerator("test-secret", 168*time.Hour).
		WithNow(func() time.Time { return issuedAt })

	storedUser := &models.User{ID: 1, Email: "john@example.com", Role: models.RoleUser}
	resolver := &mockUserResolver{users: map[int]*models.User{1: storedUser}}

	validToken, err := tokens.Issue(1)
	require.NoError(t, err)
	deletedUserToken, err := tokens.Issue(99)
	require.NoError(t, err)

	expiredToken, err := security.NewTokenGenerator("test-secret", 168*time.Hour).
		WithNow(func() time.Time { return issuedAt.Add(-200 * time.Hour) }).
		Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name          string
		header        string
		expectedError bool
	}{
		{
			name:   "valid bearer token",
			header: "Bearer " + validToken,
		},
		{
			name:   "scheme is case-insensitive",
			header: "bearer " + validToken,
		},
		{
			name:          "missing header",
			header:        "",
			expectedError: true,
		},
		{
			name:          "wrong scheme",
			header:        "Token " + validToken,
			expectedError: true,
		},
		{
			name:          "bare token without scheme",
			header:        validToken,
			expectedError: true,
		},
		{
			name:          "garbage token",
			header:        "Bearer not-a-token",
			expectedError: true,
		},
		{
			name:          "expired token",
			header:        "Bearer " + expiredToken,
			expectedError: true,
		},
		{
			name:          "token for a deleted user",
			header:        "Bearer " + deletedUserToken,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := AuthenticateRequest(context.Background(), tokens, resolver, tt.header)

			if tt.expectedError {
				assert.True(t, apperror.Is(err, apperror.Unauthenticated))
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, storedUser, user)
			}
		})
	}
}

func TestAuthorizeRoles(t *testing.T) {
	tests := []struct {
		name          string
		user          *models.User
		allowedRoles  []models.Role
		expectedError bool
	}{
		{
			name:         "role in allowed set",
			user:         &models.User{Role: models.RoleAdmin},
			allowedRoles: []models.Role{models.RoleAdmin},
		},
		{
			name:         "role among several allowed",
			user:         &models.User{Role: models.RoleUser},
			allowedRoles: []models.Role{models.RoleAdmin, models.RoleUser},
		},
		{
			name:          "role not allowed",
			user:          &models.User{Role: models.RoleUser},
			allowedRoles:  []models.Role{models.RoleAdmin},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeRoles(tt.user, tt.allowedRoles...)

			if tt.expectedError {
				assert.True(t, apperror.Is(err, apperror.Forbidden))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	tokens := security.NewTokenGenerator("test-secret", 168*time.Hour)
	storedUser := &models.User{ID: 1, Email: "john@example.com", Role: models.RoleUser}
	resolver := &mockUserResolver{users: map[int]*models.User{1: storedUser}}

	validToken, err := tokens.Issue(1)
	require.NoError(t, err)

	handler := Authenticate(tokens, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		require.True(t, ok)
		assert.Equal(t, storedUser, user)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "valid token passes through", header: "Bearer " + validToken, expectedStatus: http.StatusOK},
		{name: "missing header is rejected", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "bad token is rejected", header: "Bearer garbage", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireRoleMiddleware(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name           string
		user           *models.User
		expectedStatus int
	}{
		{
			name:           "admin passes",
			user:           &models.User{ID: 1, Role: models.RoleAdmin},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-admin is forbidden",
			user:           &models.User{ID: 2, Role: models.RoleUser},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "no attached user is unauthorized",
			user:           nil,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
