package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/policy"
	"github.com/pageza/foodgram/backend/internal/types"
)

const tagsCacheKey = "tags:all"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CatalogService manages ingredients and tags. Reads are public, writes
// need the admin role.
type CatalogService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		db:    db,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// ListIngredients returns ingredients whose name starts with prefix, ignoring case.
func (s *CatalogService) ListIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(prefix))+"%")
	}
	ingredients := make([]models.Ingredient, 0)
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list ingredients")
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, lookupError(err, "ingredient", id)
	}
	return &ingredient, nil
}

func (s *CatalogService) CreateIngredient(ctx context.Context, actorID uuid.UUID, req *types.IngredientRequest) (*models.Ingredient, error) {
	if err := s.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	ingredient := &models.Ingredient{}
	if err := applyIngredient(ingredient, req); err != nil {
		return nil, err
	}
	if err := s.ingredientFree(ctx, ingredient); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return nil, writeError(err, "an ingredient with this name and unit already exists", "failed to create ingredient")
	}
	return ingredient, nil
}

func (s *CatalogService) UpdateIngredient(ctx context.Context, actorID uuid.UUID, id uint, req *types.IngredientRequest) (*models.Ingredient, error) {
	if err := s.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	ingredient, err := s.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyIngredient(ingredient, req); err != nil {
		return nil, err
	}
	if err := s.ingredientFree(ctx, ingredient); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(ingredient).Error; err != nil {
		return nil, writeError(err, "an ingredient with this name and unit already exists", "failed to update ingredient")
	}
	return ingredient, nil
}

func (s *CatalogService) DeleteIngredient(ctx context.Context, actorID uuid.UUID, id uint) error {
	if err := s.Authorize(ctx, actorID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete ingredient quantities")
		}
		res := tx.Delete(&models.Ingredient{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to delete ingredient")
		}
		if res.RowsAffected == 0 {
			return notFound("ingredient", id)
		}
		return nil
	})
}

// ListTags returns all tags ordered by id. The list is cached until the next tag write.
func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	if cached, ok := s.cache.Get(tagsCacheKey); ok {
		return cached.([]models.Tag), nil
	}
	tags := make([]models.Tag, 0)
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list tags")
	}
	s.cache.Set(tagsCacheKey, tags, cache.NoExpiration)
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, lookupError(err, "tag", id)
	}
	return &tag, nil
}

func (s *CatalogService) CreateTag(ctx context.Context, actorID uuid.UUID, req *types.TagRequest) (*models.Tag, error) {
	if err := s.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	tag := &models.Tag{}
	if err := applyTag(tag, req); err != nil {
		return nil, err
	}
	if err := s.tagFree(ctx, tag); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, writeError(err, "a tag with this name, color or slug already exists", "failed to create tag")
	}
	s.cache.Delete(tagsCacheKey)
	return tag, nil
}

func (s *CatalogService) UpdateTag(ctx context.Context, actorID uuid.UUID, id uint, req *types.TagRequest) (*models.Tag, error) {
	if err := s.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	tag, err := s.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyTag(tag, req); err != nil {
		return nil, err
	}
	if err := s.tagFree(ctx, tag); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(tag).Error; err != nil {
		return nil, writeError(err, "a tag with this name, color or slug already exists", "failed to update tag")
	}
	s.cache.Delete(tagsCacheKey)
	return tag, nil
}

func (s *CatalogService) DeleteTag(ctx context.Context, actorID uuid.UUID, id uint) error {
	if err := s.Authorize(ctx, actorID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM recipe_tags WHERE tag_id = ?", id).Error; err != nil {
			return errors.Wrap(err, "failed to unlink tag")
		}
		res := tx.Delete(&models.Tag{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to delete tag")
		}
		if res.RowsAffected == 0 {
			return notFound("tag", id)
		}
		return nil
	})
	if err == nil {
		s.cache.Delete(tagsCacheKey)
	}
	return err
}

// Authorize returns ErrForbidden unless actorID may write the catalog.
func (s *CatalogService) Authorize(ctx context.Context, actorID uuid.UUID) error {
	actor, err := loadActor(ctx, s.db, actorID)
	if err != nil {
		return err
	}
	if !policy.CanManageCatalog(actor) {
		return ErrForbidden
	}
	return nil
}

// ingredientFree reports a conflict when another ingredient already has the
// same name and unit.
func (s *CatalogService) ingredientFree(ctx context.Context, ingredient *models.Ingredient) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("name = ? AND measurement_unit = ? AND id <> ?", ingredient.Name, ingredient.MeasurementUnit, ingredient.ID).
		Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "failed to check ingredient")
	}
	if count > 0 {
		return &ConflictError{Message: "an ingredient with this name and unit already exists"}
	}
	return nil
}

// tagFree reports which unique tag fields are already taken by another tag.
func (s *CatalogService) tagFree(ctx context.Context, tag *models.Tag) error {
	verr := NewValidationError()
	for field, value := range map[string]string{"name": tag.Name, "color": tag.Color, "slug": tag.Slug} {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.Tag{}).
			Where(field+" = ? AND id <> ?", value, tag.ID).
			Count(&count).Error
		if err != nil {
			return errors.Wrap(err, "failed to check tag")
		}
		if count > 0 {
			verr.Add(field, "A tag with this "+field+" already exists.")
		}
	}
	return verr.OrNil()
}

func applyIngredient(ingredient *models.Ingredient, req *types.IngredientRequest) error {
	verr := NewValidationError()
	name := strings.TrimSpace(req.Name)
	unit := strings.TrimSpace(req.MeasurementUnit)
	if name == "" {
		verr.Add("name", MsgRequired)
	}
	if unit == "" {
		verr.Add("measurement_unit", MsgRequired)
	}
	if err := verr.OrNil(); err != nil {
		return err
	}
	ingredient.Name = name
	ingredient.MeasurementUnit = unit
	return nil
}

func applyTag(tag *models.Tag, req *types.TagRequest) error {
	name := strings.TrimSpace(req.Name)
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = models.Slugify(name, models.TagSlugLength)
	}

	verr := NewValidationError()
	if name == "" {
		verr.Add("name", MsgRequired)
	}
	if slug == "" || slug != models.Slugify(slug, 64) {
		verr.Add("slug", "Enter a valid slug consisting of letters, numbers or hyphens.")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	tag.Name = name
	tag.Color = strings.ToUpper(req.Color)
	tag.Slug = slug
	return nil
}
