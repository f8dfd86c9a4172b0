package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/policy"
	"github.com/pageza/foodgram/backend/internal/types"
)

const msgDuplicateRecipe = "you already have a recipe with this name"

// cooking_time and amount are INTEGER columns; ids are BIGSERIAL.
const (
	maxQuantity = math.MaxInt32
	maxID       = math.MaxInt64
)

var msgQuantityTooLarge = fmt.Sprintf("Ensure this value is less than or equal to %d.", maxQuantity)

// RecipeService owns the recipe write transaction and recipe reads.
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
	log    *zap.SugaredLogger
}

func NewRecipeService(db *gorm.DB, images *ImageService, log *zap.SugaredLogger) *RecipeService {
	return &RecipeService{db: db, images: images, log: log}
}

// Create stores a new recipe authored by the caller together with its tags
// and ingredient quantities, all in one transaction.
func (s *RecipeService) Create(ctx context.Context, actorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	actor, err := loadActor(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	if !policy.CanWrite(actor) {
		return nil, ErrForbidden
	}
	if err := validateRecipe(req, true); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.checkNameFree(ctx, actor.ID, name, uuid.Nil); err != nil {
		return nil, err
	}

	image, err := s.images.SaveDataURI(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    &actor.ID,
		Name:        name,
		Image:       image,
		Text:        req.Text,
		CookingTime: *req.CookingTime,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return writeError(err, msgDuplicateRecipe, "failed to create recipe")
		}
		return replaceAssociations(tx, recipe, req)
	})
	if err != nil {
		s.discardImage(ctx, image)
		return nil, err
	}

	s.log.Infow("recipe created", "recipe_id", recipe.ID, "author_id", actor.ID)
	return s.Get(ctx, &actor.ID, recipe.ID)
}

// Update rewrites the scalar fields of a recipe and fully replaces its tags
// and ingredient quantities. The author never changes.
func (s *RecipeService) Update(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	actor, err := loadActor(ctx, s.db, actorID)
	if err != nil {
		return nil, err
	}
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateRecipe(actor, recipe) {
		return nil, ErrForbidden
	}
	if err := validateRecipe(req, false); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if recipe.AuthorID != nil {
		if err := s.checkNameFree(ctx, *recipe.AuthorID, name, recipe.ID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"name":         name,
		"text":         req.Text,
		"cooking_time": *req.CookingTime,
	}
	var image string
	if req.Image != "" {
		image, err = s.images.SaveDataURI(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		updates["image"] = image
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return writeError(err, msgDuplicateRecipe, "failed to update recipe")
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return errors.Wrap(err, "failed to clear recipe ingredients")
		}
		return replaceAssociations(tx, recipe, req)
	})
	if err != nil {
		if image != "" {
			s.discardImage(ctx, image)
		}
		return nil, err
	}

	s.log.Infow("recipe updated", "recipe_id", recipe.ID, "actor_id", actor.ID)
	return s.Get(ctx, &actor.ID, recipe.ID)
}

// Delete removes a recipe together with its quantities, tag links,
// favorites and cart entries.
func (s *RecipeService) Delete(ctx context.Context, actorID, recipeID uuid.UUID) error {
	actor, err := loadActor(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	recipe, err := s.find(ctx, recipeID)
	if err != nil {
		return err
	}
	if !policy.CanMutateRecipe(actor, recipe) {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.RecipeIngredient{}, &models.Favorite{}, &models.CartEntry{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return errors.Wrap(err, "failed to delete recipe dependents")
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return errors.Wrap(err, "failed to unlink recipe tags")
		}
		return errors.Wrap(tx.Delete(recipe).Error, "failed to delete recipe")
	})
	if err != nil {
		return err
	}

	s.log.Infow("recipe deleted", "recipe_id", recipe.ID, "actor_id", actor.ID)
	return nil
}

// Get returns the full view of a recipe for viewer, who may be nil.
func (s *RecipeService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := withRecipeAssociations(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "recipe", id)
	}
	views, err := s.present(ctx, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns one page of recipes matching filter, newest first, and the
// total number of matches.
func (s *RecipeService) List(ctx context.Context, filter types.RecipeFilter) ([]types.RecipeResponse, int64, error) {
	scope := recipeFilterScope(s.db, filter)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(scope).Count(&count).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count recipes")
	}

	var recipes []models.Recipe
	q := withRecipeAssociations(s.db.WithContext(ctx)).Scopes(scope).
		Order("recipes.created_at DESC").Order("recipes.id")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list recipes")
	}

	views, err := s.present(ctx, filter.Viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (s *RecipeService) find(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "recipe", id)
	}
	return &recipe, nil
}

// checkNameFree reports a conflict when author already has a recipe called
// name other than except. The unique index stays the final arbiter.
func (s *RecipeService) checkNameFree(ctx context.Context, authorID uuid.UUID, name string, except uuid.UUID) error {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, name)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check recipe name")
	}
	if count > 0 {
		return &ConflictError{Message: msgDuplicateRecipe}
	}
	return nil
}

// present attaches the viewer-specific flags to each recipe.
func (s *RecipeService) present(ctx context.Context, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	ids := make([]uuid.UUID, 0, len(recipes))
	authors := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
		if r.AuthorID != nil {
			authors = append(authors, *r.AuthorID)
		}
	}

	favorited, err := memberRecipes(ctx, s.db, &models.Favorite{}, viewer, ids)
	if err != nil {
		return nil, err
	}
	inCart, err := memberRecipes(ctx, s.db, &models.CartEntry{}, viewer, ids)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedAuthors(ctx, s.db, viewer, authors)
	if err != nil {
		return nil, err
	}

	views := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		flags := recipeFlags{favorited: favorited[r.ID], inCart: inCart[r.ID]}
		if r.AuthorID != nil {
			flags.subscribed = subscribed[*r.AuthorID]
		}
		views = append(views, recipeView(r, flags))
	}
	return views, nil
}

func withRecipeAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Tags").Preload("Ingredients.Ingredient")
}

func recipeFilterScope(db *gorm.DB, filter types.RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if filter.AuthorID != nil {
			q = q.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if len(filter.TagSlugs) > 0 {
			tagged := db.Table("recipe_tags").Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs)
			q = q.Where("recipes.id IN (?)", tagged)
		}
		if filter.Viewer != nil && filter.OnlyFavorited {
			q = q.Where("recipes.id IN (?)", db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", *filter.Viewer))
		}
		if filter.Viewer != nil && filter.OnlyInCart {
			q = q.Where("recipes.id IN (?)", db.Model(&models.CartEntry{}).Select("recipe_id").Where("user_id = ?", *filter.Viewer))
		}
		return q
	}
}

// validateRecipe checks presence and shape of the payload. The image is
// only mandatory on create.
func validateRecipe(req *types.RecipeRequest, creating bool) error {
	verr := NewValidationError()

	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", MsgRequired)
	} else if len([]rune(strings.TrimSpace(req.Name))) > 200 {
		verr.Add("name", "Ensure this field has no more than 200 characters.")
	}
	if strings.TrimSpace(req.Text) == "" {
		verr.Add("text", MsgRequired)
	}
	if creating && req.Image == "" {
		verr.Add("image", MsgRequired)
	}

	switch {
	case req.CookingTime == nil:
		verr.Add("cooking_time", MsgRequired)
	case *req.CookingTime < 1:
		verr.Add("cooking_time", "Ensure this value is greater than or equal to 1.")
	case *req.CookingTime > maxQuantity:
		verr.Add("cooking_time", msgQuantityTooLarge)
	}

	if len(req.Tags) == 0 {
		verr.Add("tags", MsgRequired)
	}
	for _, id := range req.Tags {
		if !validID(id) {
			verr.Add("tags", fmt.Sprintf("Invalid tag id %d.", id))
		}
	}

	if len(req.Ingredients) == 0 {
		verr.Add("ingredients", MsgRequired)
	} else {
		seen := make(map[uint]bool, len(req.Ingredients))
		duplicate := false
		for _, in := range req.Ingredients {
			if seen[in.ID] {
				duplicate = true
			}
			seen[in.ID] = true
			if !validID(in.ID) {
				verr.Add("ingredients", fmt.Sprintf("Invalid ingredient id %d.", in.ID))
			}
			switch {
			case in.Amount < 1:
				verr.Add("ingredients", fmt.Sprintf("Amount of ingredient %d must be at least 1.", in.ID))
			case in.Amount > maxQuantity:
				verr.Add("ingredients", fmt.Sprintf("Amount of ingredient %d must be at most %d.", in.ID, maxQuantity))
			}
		}
		if duplicate {
			verr.Add("ingredients", "Ingredients must be unique.")
		}
	}

	return verr.OrNil()
}

// discardImage removes an image whose recipe write rolled back.
func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if err := s.images.Discard(context.WithoutCancel(ctx), url); err != nil {
		s.log.Warnw("failed to discard image", "image", url, "error", err)
	}
}

func validID(id uint) bool {
	return id >= 1 && uint64(id) <= maxID
}

// replaceAssociations sets the recipe's tags to exactly the submitted set
// and inserts one quantity row per submitted ingredient. Callers must run
// it inside the write transaction, after removing any previous quantities.
func replaceAssociations(tx *gorm.DB, recipe *models.Recipe, req *types.RecipeRequest) error {
	tagIDs := uniqueIDs(req.Tags)
	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return errors.Wrap(err, "failed to load tags")
	}
	if len(tags) != len(tagIDs) {
		found := make([]uint, 0, len(tags))
		for _, t := range tags {
			found = append(found, t.ID)
		}
		return missingReference("tag", tagIDs, found)
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return errors.Wrap(err, "failed to replace recipe tags")
	}

	ingredientIDs := make([]uint, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		ingredientIDs = append(ingredientIDs, in.ID)
	}
	var found []uint
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Pluck("id", &found).Error; err != nil {
		return errors.Wrap(err, "failed to load ingredients")
	}
	if len(found) != len(ingredientIDs) {
		return missingReference("ingredient", ingredientIDs, found)
	}

	rows := make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: in.ID,
			Amount:       in.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return errors.Wrap(err, "failed to insert recipe ingredients")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func missingReference(resource string, wanted, found []uint) *NotFoundError {
	have := make(map[uint]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	var missing []string
	for _, id := range wanted {
		if !have[id] {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	sort.Strings(missing)
	return &NotFoundError{
		Resource: resource,
		ID:       strings.Join(missing, ","),
		Message:  fmt.Sprintf("%s not found: %s", resource, strings.Join(missing, ", ")),
	}
}
