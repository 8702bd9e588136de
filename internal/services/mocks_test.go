package services

import (
	"context"
	"time"

	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
)

// mockUserRepo is a hand-written stub for the user data access interfaces.
// Unset functions fall back to not-found or no-op behavior.
type mockUserRepo struct {
	createFn     func(ctx context.Context, user *models.User) error
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
	getByIDFn    func(ctx context.Context, userID int) (*models.User, error)
	getAllFn     func(ctx context.Context) ([]models.User, error)
	updateFn     func(ctx context.Context, userID int, name, passwordHash *string, role *models.Role) error
	deleteFn     func(ctx context.Context, userID int) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, apperror.New(apperror.NotFound, "user not found")
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return nil, apperror.New(apperror.NotFound, "user not found")
}

func (m *mockUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return []models.User{}, nil
}

func (m *mockUserRepo) Update(ctx context.Context, userID int, name, passwordHash *string, role *models.Role) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, name, passwordHash, role)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, userID int) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID)
	}
	return nil
}

// mockResetTokenManager stubs the reset token lifecycle and counts rollbacks
type mockResetTokenManager struct {
	generateFn func(ctx context.Context, user *models.User) (string, error)
	consumeFn  func(ctx context.Context, plaintext, newPassword string) (*models.User, error)
	clearCalls []int
}

func (m *mockResetTokenManager) Generate(ctx context.Context, user *models.User) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, user)
	}
	return "generated-token", nil
}

func (m *mockResetTokenManager) Consume(ctx context.Context, plaintext, newPassword string) (*models.User, error) {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, plaintext, newPassword)
	}
	return nil, apperror.New(apperror.InvalidOrExpiredToken, "invalid or expired token")
}

func (m *mockResetTokenManager) Clear(ctx context.Context, userID int) error {
	m.clearCalls = append(m.clearCalls, userID)
	return nil
}

// sentEmail records one delivery through the mock sender
type sentEmail struct {
	to      string
	subject string
	body    string
}

// mockSender records outgoing email and optionally fails delivery
type mockSender struct {
	sendErr error
	sent    []sentEmail
}

func (m *mockSender) Send(to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

// mockResetTokenRepo captures reset token persistence calls
type mockResetTokenRepo struct {
	setErr     error
	consumeFn  func(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*models.User, error)
	clearErr   error
	clearCalls []int

	setUserID    int
	setTokenHash string
	setExpiresAt time.Time
}

func (m *mockResetTokenRepo) SetResetToken(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setUserID = userID
	m.setTokenHash = tokenHash
	m.setExpiresAt = expiresAt
	return nil
}

func (m *mockResetTokenRepo) ClearResetToken(ctx context.Context, userID int) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clearCalls = append(m.clearCalls, userID)
	return nil
}

func (m *mockResetTokenRepo) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*models.User, error) {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, tokenHash, newPasswordHash, now)
	}
	return nil, apperror.New(apperror.InvalidOrExpiredToken, "invalid or expired token")
}
