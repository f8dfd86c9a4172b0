package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const testSecret = "test-secret"

func TestAuthService_LoginAndValidate(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "Alice")
	auth := service.NewAuthService(db, testSecret, time.Hour, nil)

	token, err := auth.Login(ctx, "  ALICE@example.com ", testhelpers.TestPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "Alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestAuthService_LoginFailures(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "bob")
	auth := service.NewAuthService(db, testSecret, time.Hour, nil)

	_, err := auth.Login(ctx, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	_, err = auth.Login(ctx, "bob@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthService_ValidateTokenRejects(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "carol")

	t.Run("expired", func(t *testing.T) {
		auth := service.NewAuthService(db, testSecret, -time.Minute, nil)
		token, err := auth.GenerateToken(user)
		require.NoError(t, err)
		_, err = auth.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		token, err := service.NewAuthService(db, "another-secret", time.Hour, nil).GenerateToken(user)
		require.NoError(t, err)
		_, err = service.NewAuthService(db, testSecret, time.Hour, nil).ValidateToken(ctx, token)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": user.ID.String()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = service.NewAuthService(db, testSecret, time.Hour, nil).ValidateToken(ctx, token)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.NewAuthService(db, testSecret, time.Hour, nil).ValidateToken(ctx, "not-a-token")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, db, "dave")
	denylist := mocks.NewMemoryDenylist()
	auth := service.NewAuthService(db, testSecret, time.Hour, denylist)

	token, err := auth.GenerateToken(user)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, claims))
	require.Contains(t, denylist.Revoked, claims.ID)
	assert.InDelta(t, time.Hour.Seconds(), denylist.Revoked[claims.ID].Seconds(), 60)

	_, err = auth.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other, err := auth.GenerateToken(user)
	require.NoError(t, err)
	_, err = auth.ValidateToken(ctx, other)
	assert.NoError(t, err, "revocation is per token")

	assert.NoError(t, service.NewAuthService(db, testSecret, time.Hour, nil).Logout(ctx, claims), "logout without a denylist is a no-op")
}
