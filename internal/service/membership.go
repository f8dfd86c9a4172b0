package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// MembershipKind selects the per-user recipe set a toggle works on.
type MembershipKind int

const (
	Favorites MembershipKind = iota
	ShoppingCart
)

func (k MembershipKind) String() string {
	if k == ShoppingCart {
		return "shopping cart"
	}
	return "favorites"
}

func (k MembershipKind) row(userID, recipeID uuid.UUID) interface{} {
	if k == ShoppingCart {
		return &models.CartEntry{UserID: userID, RecipeID: recipeID}
	}
	return &models.Favorite{UserID: userID, RecipeID: recipeID}
}

func (k MembershipKind) model() interface{} {
	if k == ShoppingCart {
		return &models.CartEntry{}
	}
	return &models.Favorite{}
}

// MembershipService toggles recipes in and out of a user's favorites and
// shopping cart.
type MembershipService struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewMembershipService(db *gorm.DB, log *zap.SugaredLogger) *MembershipService {
	return &MembershipService{db: db, log: log}
}

// Add puts the recipe into the user's set. Adding twice is a conflict.
func (s *MembershipService) Add(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) (*types.CroppedRecipeResponse, error) {
	if _, err := loadActor(ctx, s.db, userID); err != nil {
		return nil, err
	}
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, lookupError(err, "recipe", recipeID)
	}

	msg := "recipe is already in " + kind.String()
	var count int64
	err := s.db.WithContext(ctx).Model(kind.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check %s", kind)
	}
	if count > 0 {
		return nil, &ConflictError{Message: msg}
	}

	if err := s.db.WithContext(ctx).Create(kind.row(userID, recipeID)).Error; err != nil {
		return nil, writeError(err, msg, "failed to add recipe to "+kind.String())
	}

	s.log.Debugw("recipe added", "set", kind.String(), "user_id", userID, "recipe_id", recipeID)
	view := croppedView(&recipe)
	return &view, nil
}

// Remove takes the recipe out of the user's set. Removing an absent entry
// is reported as not found.
func (s *MembershipService) Remove(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error {
	if _, err := loadActor(ctx, s.db, userID); err != nil {
		return err
	}
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&exists).Error; err != nil {
		return errors.Wrap(err, "failed to load recipe")
	}
	if exists == 0 {
		return notFound("recipe", recipeID)
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(kind.model())
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to remove recipe from %s", kind)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: kind.String(), ID: recipeID.String(), Message: "recipe is not in " + kind.String()}
	}
	return nil
}

// memberRecipes reports which of recipes are in viewer's set backed by model.
func memberRecipes(ctx context.Context, db *gorm.DB, model interface{}, viewer *uuid.UUID, recipes []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	if viewer == nil || len(recipes) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipes).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load recipe memberships")
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
