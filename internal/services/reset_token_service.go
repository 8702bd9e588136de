package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/security"
)

// resetTokenEntropyBytes is the number of random bytes in a reset token
const resetTokenEntropyBytes = 20

// ResetTokenRepository is the interface that wraps reset token persistence
// on the users table
type ResetTokenRepository interface {
	// Method SetResetToken stores a reset token hash and its expiry on a user.
	SetResetToken(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error
	// Method ClearResetToken clears both reset fields on a user.
	ClearResetToken(ctx context.Context, userID int) error
	// Method ConsumeResetToken atomically matches an unexpired token hash,
	// replaces the password hash and clears the reset fields. It fails with
	// an invalid-or-expired error when no row matches.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*models.User, error)
}

// resetTokenService manages single-use, time-limited password reset tokens
type resetTokenService struct {
	repo        ResetTokenRepository
	hasher      *security.PasswordHasher
	tokenExpiry time.Duration
	now         func() time.Time
}

// NewResetTokenService creates a new reset token service
func NewResetTokenService(repo ResetTokenRepository, hasher *security.PasswordHasher, tokenExpiry time.Duration) *resetTokenService {
	return &resetTokenService{
		repo:        repo,
		hasher:      hasher,
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

// WithNow overrides the clock, for tests
func (s *resetTokenService) WithNow(now func() time.Time) *resetTokenService {
	s.now = now
	return s
}

// hashResetToken produces the at-rest form of a reset token. Plain SHA-256
// is intentional here: the token carries high entropy (unlike a password),
// and the digest must be a stable lookup key, which a salted adaptive hash
// cannot be.
func hashResetToken(plaintext string) string {
	digest := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(digest[:])
}

// Generate creates a cryptographically random reset token for the user,
// stores only its hash plus an expiry, and returns the plaintext. The
// plaintext is never persisted; the caller delivers it out-of-band.
func (s *resetTokenService) Generate(ctx context.Context, user *models.User) (string, error) {
	buf := make([]byte, resetTokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", apperror.Wrap(apperror.Internal, "failed to generate reset token", err)
	}
	plaintext := hex.EncodeToString(buf)

	tokenHash := hashResetToken(plaintext)
	expiresAt := s.now().Add(s.tokenExpiry)

	if err := s.repo.SetResetToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return "", err
	}

	user.ResetTokenHash = &tokenHash
	user.ResetTokenExpiresAt = &expiresAt

	return plaintext, nil
}

// Consume exchanges a valid plaintext reset token for a password change.
// The matching fields are cleared on use, so a token can be consumed
// exactly once.
func (s *resetTokenService) Consume(ctx context.Context, plaintext, newPassword string) (*models.User, error) {
	newPasswordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to hash password", err)
	}

	return s.repo.ConsumeResetToken(ctx, hashResetToken(plaintext), newPasswordHash, s.now())
}

// Clear rolls back an outstanding reset token, used when delivery fails
func (s *resetTokenService) Clear(ctx context.Context, userID int) error {
	return s.repo.ClearResetToken(ctx, userID)
}
