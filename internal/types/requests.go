package types

import "github.com/google/uuid"

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the sign-up payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,min=3,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// RecipeIngredientInput is one (ingredient, amount) pair of a recipe payload.
type RecipeIngredientInput struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the create/update payload for a recipe. Presence rules
// are checked by the recipe service so they can be reported per field.
type RecipeRequest struct {
	Name        string                  `json:"name"`
	Image       string                  `json:"image"`
	Text        string                  `json:"text"`
	CookingTime *int                    `json:"cooking_time"`
	Tags        []uint                  `json:"tags"`
	Ingredients []RecipeIngredientInput `json:"ingredients"`
}

type TagRequest struct {
	Name  string `json:"name" binding:"required,max=256"`
	Color string `json:"color" binding:"required,len=7,hexcolor"`
	Slug  string `json:"slug" binding:"omitempty,max=64"`
}

type IngredientRequest struct {
	Name            string `json:"name" binding:"required,max=256"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=16"`
}

// RecipeFilter narrows a recipe listing. Viewer is the authenticated caller,
// if any; the favorite and cart filters only apply when it is set.
type RecipeFilter struct {
	Viewer        *uuid.UUID
	AuthorID      *uuid.UUID
	TagSlugs      []string
	OnlyFavorited bool
	OnlyInCart    bool
	Limit         int
	Offset        int
}
