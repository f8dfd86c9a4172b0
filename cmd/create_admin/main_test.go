package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestEnsureAdminCreates(t *testing.T) {
	db := testhelpers.NewTestDB(t)

	user, err := ensureAdmin(db, adminAccount{
		Email:     "Root@Example.com",
		Username:  "root",
		FirstName: "Root",
		LastName:  "Admin",
		Password:  "super-secret",
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", user.Email)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, user.IsActive)

	_, err = ensureAdmin(db, adminAccount{Email: "other@example.com", Username: "other", Password: "short"}, zap.NewNop().Sugar())
	assert.Error(t, err)
	_, err = ensureAdmin(db, adminAccount{}, zap.NewNop().Sugar())
	assert.Error(t, err)
}

func TestEnsureAdminPromotes(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	member := testhelpers.CreateUser(t, db, "cook")

	user, err := ensureAdmin(db, adminAccount{Email: member.Email}, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, member.ID, user.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", member.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.True(t, stored.IsStaff)
}
