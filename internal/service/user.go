package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// reservedUsernames would shadow fixed routes under /users.
var reservedUsernames = map[string]bool{"me": true, "subscriptions": true, "set_password": true}

type UserService struct {
	db         *gorm.DB
	bcryptCost int
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, bcryptCost: bcrypt.DefaultCost}
}

// Register creates an active account with the member role.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	verr := NewValidationError()
	if !usernamePattern.MatchString(username) {
		verr.Add("username", "Enter a valid username. Letters, digits and @/./+/-/_ only.")
	}
	if reservedUsernames[strings.ToLower(username)] {
		verr.Add("username", "This username is reserved.")
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "failed to check email")
	}
	if count > 0 {
		verr.Add("email", "A user with that email already exists.")
	}
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "failed to check username")
	}
	if count > 0 {
		verr.Add("username", "A user with that username already exists.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, writeError(err, "a user with that email or username already exists", "failed to create user")
	}
	return user, nil
}

// GetByID loads an account.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "user", id)
	}
	return &user, nil
}

// Get returns the public view of an account as seen by viewer.
func (s *UserService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, viewer, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns a page of accounts ordered by username, and the total count.
func (s *UserService) List(ctx context.Context, viewer *uuid.UUID, limit, offset int) ([]types.UserResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count users")
	}

	var users []models.User
	if err := db.Order("username").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list users")
	}

	views, err := s.views(ctx, viewer, users)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uuid.UUID, req *types.SetPasswordRequest) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return NewValidationError().Add("current_password", "Invalid password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}
	err = s.db.WithContext(ctx).Model(user).Update("password_hash", string(hash)).Error
	return errors.Wrap(err, "failed to update password")
}

func (s *UserService) views(ctx context.Context, viewer *uuid.UUID, users []models.User) ([]types.UserResponse, error) {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	subscribed, err := subscribedAuthors(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userView(&users[i], subscribed[users[i].ID]))
	}
	return out, nil
}

// loadActor resolves the authenticated caller. A token for a deleted
// account is treated as no credentials at all.
func loadActor(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errors.Wrap(err, "failed to load current user")
	}
	return &user, nil
}

// subscribedAuthors reports which of authors viewer follows.
func subscribedAuthors(ctx context.Context, db *gorm.DB, viewer *uuid.UUID, authors []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	if viewer == nil || len(authors) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id IN ?", *viewer, authors).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load subscriptions")
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
