package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/models"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the MySQL error number for unique constraint violations
const mysqlDuplicateEntry = 1062

// userRepository implements the user data access layer
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// userColumns is the column list scanned into a models.User
const userColumns = `id, name, email, password_hash, role, avatar, reset_token_hash, reset_token_expires_at, created_at`

// scanUser scans a single user row
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var resetTokenHash sql.NullString
	var resetTokenExpiresAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Avatar,
		&resetTokenHash,
		&resetTokenExpiresAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if resetTokenHash.Valid {
		user.ResetTokenHash = &resetTokenHash.String
	}
	if resetTokenExpiresAt.Valid {
		user.ResetTokenExpiresAt = &resetTokenExpiresAt.Time
	}

	return user, nil
}

// Create inserts a new user into the database. The email must already be
// normalized and the password hashed by the caller.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role, user.Avatar, user.CreatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return apperror.New(apperror.DuplicateEmail, "email already exists")
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return apperror.Wrap(apperror.Internal, "failed to create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return apperror.Wrap(apperror.Internal, "failed to get last insert id", err)
	}

	user.ID = int(id)
	return nil
}

// GetByEmail retrieves a user by normalized email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, apperror.New(apperror.NotFound, "user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err))
		return nil, apperror.Wrap(apperror.Internal, "failed to get user by email", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, apperror.New(apperror.NotFound, "user not found")
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("userId", userID))
		return nil, apperror.Wrap(apperror.Internal, "failed to get user by id", err)
	}

	return user, nil
}

// GetAll retrieves all users ordered by creation time
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, apperror.Wrap(apperror.Internal, "failed to list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		var resetTokenHash sql.NullString
		var resetTokenExpiresAt sql.NullTime

		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Avatar,
			&resetTokenHash,
			&resetTokenExpiresAt,
			&user.CreatedAt,
		); err != nil {
			return nil, apperror.Wrap(apperror.Internal, "failed to scan user", err)
		}

		if resetTokenHash.Valid {
			user.ResetTokenHash = &resetTokenHash.String
		}
		if resetTokenExpiresAt.Valid {
			user.ResetTokenExpiresAt = &resetTokenExpiresAt.Time
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to iterate users", err)
	}

	return users, nil
}

// Update applies a partial update to a user. Nil fields are left unchanged.
// The password hash, when present, replaces the stored hash wholesale.
func (r *userRepository) Update(ctx context.Context, userID int, name, passwordHash *string, role *models.Role) error {
	setClauses := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *name)
	}
	if passwordHash != nil {
		setClauses = append(setClauses, "password_hash = ?")
		args = append(args, *passwordHash)
	}
	if role != nil {
		setClauses = append(setClauses, "role = ?")
		args = append(args, *role)
	}

	if len(setClauses) == 0 {
		return nil
	}

	query := `UPDATE users SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	args = append(args, userID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("userId", userID))
		return apperror.Wrap(apperror.Internal, "failed to update user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(apperror.Internal, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperror.New(apperror.NotFound, "user not found")
	}

	return nil
}

// Delete removes a user. Deletion is immediate, not soft.
func (r *userRepository) Delete(ctx context.Context, userID int) error {
	query := `DELETE FROM users WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("userId", userID))
		return apperror.Wrap(apperror.Internal, "failed to delete user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(apperror.Internal, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperror.New(apperror.NotFound, "user not found")
	}

	return nil
}

// SetResetToken stores the reset token hash and its expiry on a user
func (r *userRepository) SetResetToken(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_token_hash = ?, reset_token_expires_at = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, tokenHash, expiresAt, userID); err != nil {
		r.logger.Error("failed to set reset token", zap.Error(err), zap.Int("userId", userID))
		return apperror.Wrap(apperror.Internal, "failed to set reset token", err)
	}

	return nil
}

// ClearResetToken clears both reset fields on a user
func (r *userRepository) ClearResetToken(ctx context.Context, userID int) error {
	query := `UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		r.logger.Error("failed to clear reset token", zap.Error(err), zap.Int("userId", userID))
		return apperror.Wrap(apperror.Internal, "failed to clear reset token", err)
	}

	return nil
}

// ConsumeResetToken looks up the user holding an unexpired reset token with
// the given hash, replaces the password hash and clears both reset fields.
// The guarded UPDATE makes the match-and-clear atomic: of two concurrent
// consumption attempts on the same token, only one sees a row affected.
func (r *userRepository) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = ? AND reset_token_expires_at > ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, tokenHash, now))
	if err == sql.ErrNoRows {
		return nil, apperror.New(apperror.InvalidOrExpiredToken, "invalid or expired token")
	}
	if err != nil {
		r.logger.Error("failed to look up reset token", zap.Error(err))
		return nil, apperror.Wrap(apperror.Internal, "failed to look up reset token", err)
	}

	update := `
		UPDATE users
		SET password_hash = ?, reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE id = ? AND reset_token_hash = ?
	`

	result, err := r.db.ExecContext(ctx, update, newPasswordHash, user.ID, tokenHash)
	if err != nil {
		r.logger.Error("failed to consume reset token", zap.Error(err), zap.Int("userId", user.ID))
		return nil, apperror.Wrap(apperror.Internal, "failed to consume reset token", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apperror.Wrap(apperror.Internal, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		// Lost the race: another request consumed the token between the
		// lookup and the update.
		return nil, apperror.New(apperror.InvalidOrExpiredToken, "invalid or expired token")
	}

	user.PasswordHash = newPasswordHash
	user.ResetTokenHash = nil
	user.ResetTokenExpiresAt = nil

	return user, nil
}
