package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/migrations"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "foodgram.db?_foreign_keys=on", database.SQLiteDSN("foodgram.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", database.SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "a.db?_foreign_keys=off", database.SQLiteDSN("a.db?_foreign_keys=off"))
}

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "foodgram", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=foodgram sslmode=disable", database.PostgresDSN(cfg))
}

func TestNewGormRejectsUnknownDriver(t *testing.T) {
	_, err := database.NewGorm(&config.Config{DBDriver: "oracle"}, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestSQLiteMigrationsCreateSchema(t *testing.T) {
	db := testhelpers.NewTestDB(t)

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
	assert.True(t, db.Migrator().HasTable("recipe_tags"))
	assert.NoError(t, database.HealthCheck(context.Background(), db))
}

func TestSQLiteEnforcesForeignKeys(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateUser(t, db, "chef")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup", nil)

	err := db.Omit(clause.Associations).Create(&models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: 4242, Amount: 1}).Error
	assert.Error(t, err)
}

func TestPostgresMigrations(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	log := zap.NewNop().Sugar()

	all, err := migrations.List()
	require.NoError(t, err)

	var applied int64
	require.NoError(t, db.Table("schema_migrations").Count(&applied).Error)
	assert.Equal(t, int64(len(all)), applied)

	// A second run finds nothing to do.
	require.NoError(t, database.RunMigrations(db, log))
	require.NoError(t, db.Table("schema_migrations").Count(&applied).Error)
	assert.Equal(t, int64(len(all)), applied)

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model), "missing table for %T", model)
	}
}
