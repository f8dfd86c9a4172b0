package service

import (
	"sort"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

func userView(u *models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func croppedView(r *models.Recipe) types.CroppedRecipeResponse {
	return types.CroppedRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// recipeFlags are the viewer-specific parts of a recipe view.
type recipeFlags struct {
	favorited  bool
	inCart     bool
	subscribed bool
}

func recipeView(r *models.Recipe, flags recipeFlags) types.RecipeResponse {
	tags := make([]models.Tag, len(r.Tags))
	copy(tags, r.Tags)
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })

	rows := make([]models.RecipeIngredient, len(r.Ingredients))
	copy(rows, r.Ingredients)
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	ingredients := make([]types.RecipeIngredientResponse, 0, len(rows))
	for _, row := range rows {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	view := types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Ingredients:      ingredients,
		IsFavorited:      flags.favorited,
		IsInShoppingCart: flags.inCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	if r.Author != nil {
		author := userView(r.Author, flags.subscribed)
		view.Author = &author
	}
	return view
}
