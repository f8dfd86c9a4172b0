// Command create_admin creates an administrator account, or promotes the
// account that already owns the email.
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
)

type adminAccount struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

func main() {
	var acc adminAccount
	flag.StringVar(&acc.Email, "email", "", "administrator email (required)")
	flag.StringVar(&acc.Username, "username", "admin", "username for a new account")
	flag.StringVar(&acc.FirstName, "first-name", "Admin", "first name for a new account")
	flag.StringVar(&acc.LastName, "last-name", "Foodgram", "last name for a new account")
	flag.Parse()
	// Kept out of flags so it does not end up in shell history.
	acc.Password = os.Getenv("ADMIN_PASSWORD")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logr.Sync()

	db, err := database.NewGorm(cfg, logr)
	if err != nil {
		logr.Fatalw("failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, logr); err != nil {
		logr.Fatalw("failed to migrate database", "error", err)
	}

	user, err := ensureAdmin(db, acc, logr)
	if err != nil {
		logr.Fatalw("failed to create administrator", "error", err)
	}
	logr.Infow("administrator ready", "user_id", user.ID, "email", user.Email)
}

// ensureAdmin promotes the account registered under acc.Email, or creates
// a new active administrator when there is none. A password is only
// required for a new account.
func ensureAdmin(db *gorm.DB, acc adminAccount, log *zap.SugaredLogger) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(acc.Email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		err = db.Model(&user).Updates(map[string]interface{}{
			"role":         models.RoleAdmin,
			"is_staff":     true,
			"is_superuser": true,
			"is_active":    true,
		}).Error
		if err != nil {
			return nil, errors.Wrap(err, "failed to promote user")
		}
		log.Infow("promoted existing user", "username", user.Username)
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errors.Wrap(err, "failed to look up user")
	}

	if len(acc.Password) < 8 {
		return nil, errors.New("ADMIN_PASSWORD must hold at least 8 characters for a new account")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user = models.User{
		Email:        email,
		Username:     acc.Username,
		FirstName:    acc.FirstName,
		LastName:     acc.LastName,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsStaff:      true,
		IsSuperuser:  true,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return &user, nil
}
