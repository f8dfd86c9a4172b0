package service_test

import (
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type testEnv struct {
	db            *gorm.DB
	images        *mocks.MemoryImageStore
	recipes       *service.RecipeService
	catalog       *service.CatalogService
	users         *service.UserService
	memberships   *service.MembershipService
	subscriptions *service.SubscriptionService
	shopping      *service.ShoppingListService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.NewTestDB(t)
	log := zap.NewNop().Sugar()
	images := mocks.NewMemoryImageStore()

	return &testEnv{
		db:            db,
		images:        images,
		recipes:       service.NewRecipeService(db, service.NewImageService(images), log),
		catalog:       service.NewCatalogService(db),
		users:         service.NewUserService(db),
		memberships:   service.NewMembershipService(db, log),
		subscriptions: service.NewSubscriptionService(db, log),
		shopping:      service.NewShoppingListService(db),
	}
}

func intPtr(v int) *int { return &v }

// recipeRequest builds a valid payload using the given tags and one unit of
// each ingredient.
func recipeRequest(t *testing.T, name string, tags []*models.Tag, ingredients ...*models.Ingredient) *types.RecipeRequest {
	t.Helper()
	req := &types.RecipeRequest{
		Name:        name,
		Image:       testhelpers.PNGDataURI(t),
		Text:        "Mix everything and bake.",
		CookingTime: intPtr(25),
	}
	for _, tag := range tags {
		req.Tags = append(req.Tags, tag.ID)
	}
	for _, in := range ingredients {
		req.Ingredients = append(req.Ingredients, types.RecipeIngredientInput{ID: in.ID, Amount: 1})
	}
	return req
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
