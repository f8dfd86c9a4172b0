package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
}

// IUserService defines the interface for account operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.UserResponse, error)
	List(ctx context.Context, viewer *uuid.UUID, limit, offset int) ([]types.UserResponse, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, req *types.SetPasswordRequest) error
}

// ICatalogService defines the interface for ingredient and tag operations
type ICatalogService interface {
	Authorize(ctx context.Context, actorID uuid.UUID) error
	ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, actorID uuid.UUID, req *types.IngredientRequest) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, actorID uuid.UUID, id uint, req *types.IngredientRequest) (*models.Ingredient, error)
	DeleteIngredient(ctx context.Context, actorID uuid.UUID, id uint) error
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, actorID uuid.UUID, req *types.TagRequest) (*models.Tag, error)
	UpdateTag(ctx context.Context, actorID uuid.UUID, id uint, req *types.TagRequest) (*models.Tag, error)
	DeleteTag(ctx context.Context, actorID uuid.UUID, id uint) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, actorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, actorID, recipeID uuid.UUID) error
	Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeResponse, error)
	List(ctx context.Context, filter types.RecipeFilter) ([]types.RecipeResponse, int64, error)
}

// IMembershipService defines the interface for favorites and shopping cart toggles
type IMembershipService interface {
	Add(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) (*types.CroppedRecipeResponse, error)
	Remove(ctx context.Context, kind MembershipKind, userID, recipeID uuid.UUID) error
}

// ISubscriptionService defines the interface for author subscriptions
type ISubscriptionService interface {
	Subscribe(ctx context.Context, subscriberID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, subscriberID, authorID uuid.UUID) error
	List(ctx context.Context, subscriberID uuid.UUID, limit, offset, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IShoppingListService defines the interface for shopping list aggregation
type IShoppingListService interface {
	Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error)
}

var (
	_ IAuthService         = (*AuthService)(nil)
	_ IUserService         = (*UserService)(nil)
	_ ICatalogService      = (*CatalogService)(nil)
	_ IRecipeService       = (*RecipeService)(nil)
	_ IMembershipService   = (*MembershipService)(nil)
	_ ISubscriptionService = (*SubscriptionService)(nil)
	_ IShoppingListService = (*ShoppingListService)(nil)
)
