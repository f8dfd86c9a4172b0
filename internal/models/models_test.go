package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(All()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *User {
	user := &User{Email: name + "@example.com", Username: name, PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "cook")

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, RoleUser, user.Role)
}

func TestIngredientNameUnitUnique(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&Ingredient{Name: "salt", MeasurementUnit: "g"}).Error)
	require.NoError(t, db.Create(&Ingredient{Name: "salt", MeasurementUnit: "pinch"}).Error)
	assert.Error(t, db.Create(&Ingredient{Name: "salt", MeasurementUnit: "g"}).Error)
}

func TestIngredientRejectsEmptyName(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, db.Create(&Ingredient{Name: "", MeasurementUnit: "g"}).Error)
}

func TestTagSlugDerivedFromName(t *testing.T) {
	db := setupTestDB(t)

	tag := &Tag{Name: "Crème Brûlée Dessert Ideas", Color: "#E26C2D"}
	require.NoError(t, db.Create(tag).Error)
	assert.Equal(t, "creme-brulee-dessert", tag.Slug)

	explicit := &Tag{Name: "Lunch", Color: "#49B64E", Slug: "midday"}
	require.NoError(t, db.Create(explicit).Error)
	assert.Equal(t, "midday", explicit.Slug)
}

func TestRecipeRejectsZeroCookingTime(t *testing.T) {
	db := setupTestDB(t)
	author := createUser(t, db, "chef")

	err := db.Create(&Recipe{AuthorID: &author.ID, Name: "Toast", Image: "x", Text: "toast it", CookingTime: 0}).Error
	assert.Error(t, err)
}

func TestRecipeNameUniquePerAuthor(t *testing.T) {
	db := setupTestDB(t)
	first := createUser(t, db, "first")
	second := createUser(t, db, "second")

	require.NoError(t, db.Create(&Recipe{AuthorID: &first.ID, Name: "Soup", Image: "x", Text: "t", CookingTime: 5}).Error)
	require.NoError(t, db.Create(&Recipe{AuthorID: &second.ID, Name: "Soup", Image: "x", Text: "t", CookingTime: 5}).Error)
	assert.Error(t, db.Create(&Recipe{AuthorID: &first.ID, Name: "Soup", Image: "x", Text: "t", CookingTime: 5}).Error)
}

func TestSubscriptionRejectsSelf(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "narcissus")

	err := db.Create(&Subscription{SubscriberID: user.ID, AuthorID: user.ID}).Error
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Breakfast", 20, "breakfast"},
		{"  Quick & Easy  ", 20, "quick-easy"},
		{"Ünïcödé", 20, "unicode"},
		{"a very long tag name that overflows", 10, "a-very-lon"},
		{"ends with dash at cut", 15, "ends-with-dash"},
		{"!!!", 20, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in, tt.max), tt.in)
	}
}
