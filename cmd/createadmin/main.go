// Command createadmin provisions the admin account: it creates the account
// when absent, or promotes an existing account to admin.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/userhub/user-service/internal/apperror"
	"github.com/userhub/user-service/internal/config"
	"github.com/userhub/user-service/internal/logger"
	"github.com/userhub/user-service/internal/models"
	"github.com/userhub/user-service/internal/repositories"
	"github.com/userhub/user-service/internal/security"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@example.com"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	adminName := os.Getenv("ADMIN_NAME")
	if adminName == "" {
		adminName = "Admin User"
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Logger.Fatal("Failed to ping database", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userRepo := repositories.NewUserRepository(db, logger.Logger)
	hasher := security.NewPasswordHasher(bcrypt.DefaultCost)

	existing, err := userRepo.GetByEmail(ctx, adminEmail)
	if err != nil && !apperror.Is(err, apperror.NotFound) {
		logger.Logger.Fatal("Failed to look up admin account", zap.Error(err))
	}

	if existing != nil {
		if existing.Role == models.RoleAdmin {
			logger.Logger.Info("Admin account already exists", zap.String("email", adminEmail))
			return
		}

		adminRole := models.RoleAdmin
		if err := userRepo.Update(ctx, existing.ID, nil, nil, &adminRole); err != nil {
			logger.Logger.Fatal("Failed to promote account to admin", zap.Error(err))
		}
		logger.Logger.Info("Promoted existing account to admin", zap.String("email", adminEmail))
		return
	}

	passwordHash, err := hasher.Hash(adminPassword)
	if err != nil {
		logger.Logger.Fatal("Failed to hash admin password", zap.Error(err))
	}

	admin := &models.User{
		Name:         adminName,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		logger.Logger.Fatal("Failed to create admin account", zap.Error(err))
	}

	logger.Logger.Info("Created admin account", zap.String("email", adminEmail), zap.Int("userId", admin.ID))
	fmt.Printf("Admin account ready: %s\n", adminEmail)
}
