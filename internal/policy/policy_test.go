package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/models"
)

func TestRoleOf(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want Role
	}{
		{"nil user", nil, Member},
		{"plain user", &models.User{Role: models.RoleUser}, Member},
		{"admin role", &models.User{Role: models.RoleAdmin}, Admin},
		{"staff flag", &models.User{Role: models.RoleUser, IsStaff: true}, Admin},
		{"superuser flag", &models.User{IsSuperuser: true}, Admin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleOf(tt.user))
		})
	}
}

func TestCanMutateRecipe(t *testing.T) {
	author := &models.User{ID: uuid.New(), IsActive: true}
	other := &models.User{ID: uuid.New(), IsActive: true}
	admin := &models.User{ID: uuid.New(), IsActive: true, Role: models.RoleAdmin}
	inactiveAuthor := &models.User{ID: author.ID}

	recipe := &models.Recipe{AuthorID: &author.ID}
	orphan := &models.Recipe{}

	assert.True(t, CanMutateRecipe(author, recipe))
	assert.False(t, CanMutateRecipe(other, recipe))
	assert.True(t, CanMutateRecipe(admin, recipe))
	assert.False(t, CanMutateRecipe(inactiveAuthor, recipe))
	assert.False(t, CanMutateRecipe(nil, recipe))
	assert.False(t, CanMutateRecipe(author, orphan))
	assert.True(t, CanMutateRecipe(admin, orphan))
}

func TestCanManageCatalog(t *testing.T) {
	assert.False(t, CanManageCatalog(&models.User{IsActive: true}))
	assert.True(t, CanManageCatalog(&models.User{IsActive: true, IsStaff: true}))
	assert.False(t, CanManageCatalog(&models.User{Role: models.RoleAdmin}))
}
