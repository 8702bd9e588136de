package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/email"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/security"
	"go.uber.org/zap"
)

// minPasswordLength is the minimum accepted password length
const minPasswordLength = 6

// emailRegex validates email shape (normalized form: lowercased, trimmed)
var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// UserRepository is the interface that wraps user data access needed by the
// auth service
type UserRepository interface {
	// Method Create inserts a new user. It fails with a duplicate-email
	// error when the normalized email is already registered; the check and
	// insert are atomic under the store's unique constraint.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by normalized email. It fails with
	// a not-found error when no such user exists.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID. It fails with a not-found
	// error when no such user exists.
	GetByID(ctx context.Context, userID int) (*models.User, error)
}

// ResetTokenManager is the interface that wraps the reset token lifecycle
type ResetTokenManager interface {
	// Method Generate creates a reset token for the user, persists its hash
	// and expiry, and returns the plaintext for out-of-band delivery.
	Generate(ctx context.Context, user *models.User) (string, error)
	// Method Consume exchanges a valid plaintext token for a password
	// change. It fails with an invalid-or-expired error otherwise.
	Consume(ctx context.Context, plaintext, newPassword string) (*models.User, error)
	// Method Clear removes an outstanding token, rolling back a Generate.
	Clear(ctx context.Context, userID int) error
}

// authService orchestrates signup, login and the password reset flow
type authService struct {
	userRepo    UserRepository
	resetTokens ResetTokenManager
	hasher      *security.PasswordHasher
	tokens      *security.TokenGenerator
	sender      email.Sender
	frontendURL string
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	resetTokens ResetTokenManager,
	hasher *security.PasswordHasher,
	tokens *security.TokenGenerator,
	sender email.Sender,
	frontendURL string,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:    userRepo,
		resetTokens: resetTokens,
		hasher:      hasher,
		tokens:      tokens,
		sender:      sender,
		frontendURL: frontendURL,
		logger:      logger,
		now:         time.Now,
	}
}

// WithNow overrides the clock, for tests
func (s *authService) WithNow(now func() time.Time) *authService {
	s.now = now
	return s
}

// normalizeEmail returns the lowercased, trimmed form used for all
// uniqueness and lookup comparisons
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword checks the minimum length rule
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

// Signup creates a new user account with role "user" and issues a session token
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	normalizedEmail := normalizeEmail(req.Email)

	if name == "" || normalizedEmail == "" || req.Password == "" {
		return nil, apperror.NewValidation("name, email and password are required")
	}
	if !emailRegex.MatchString(normalizedEmail) {
		return nil, apperror.NewValidation("invalid email format")
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to hash password", err)
	}

	user := &models.User{
		Name:         name,
		Email:        normalizedEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleUser, // Default role
		CreatedAt:    s.now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to issue token", err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates a user. An unknown email and a wrong password produce
// the identical error so account existence is not observable here.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	normalizedEmail := normalizeEmail(req.Email)
	if normalizedEmail == "" || req.Password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return nil, apperror.New(apperror.InvalidCredentials, "invalid email or password")
		}
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, apperror.New(apperror.InvalidCredentials, "invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to issue token", err)
	}

	return &models.AuthResponse{Token: token, User: user}, nil
}

// ForgotPassword generates a reset token and emails it as a link. Whether
// the email is registered is not observable: an unknown address yields the
// same success as a delivered email. The returned plaintext token is empty
// unless a token was actually generated; it is exposed to clients only in
// development mode.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) (string, error) {
	normalizedEmail := normalizeEmail(emailAddr)
	if normalizedEmail == "" {
		return "", apperror.NewValidation("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizedEmail)
	if err != nil {
		if apperror.Is(err, apperror.NotFound) {
			// Do not reveal whether the account exists
			return "", nil
		}
		return "", err
	}

	resetToken, err := s.resetTokens.Generate(ctx, user)
	if err != nil {
		return "", err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, resetToken)
	body := fmt.Sprintf(
		"You requested a password reset.\n\nYour reset link:\n%s\n\nThe link expires in 10 minutes.\n\nIf you did not request a password reset, please ignore this email.",
		resetURL,
	)

	if err := s.sender.Send(user.Email, "Password Reset", body); err != nil {
		s.logger.Error("failed to send reset email", zap.Error(err), zap.Int("userId", user.ID))
		// Roll back so a dead token is not left outstanding
		if clearErr := s.resetTokens.Clear(ctx, user.ID); clearErr != nil {
			s.logger.Error("failed to roll back reset token", zap.Error(clearErr), zap.Int("userId", user.ID))
		}
		return "", apperror.Wrap(apperror.Internal, "failed to send reset email", err)
	}

	return resetToken, nil
}

// ResetPassword consumes a reset token and replaces the user's password
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	if token == "" {
		return nil, apperror.NewValidation("reset token is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	return s.resetTokens.Consume(ctx, token, newPassword)
}
