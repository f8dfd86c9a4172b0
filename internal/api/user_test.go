package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterLoginLogout(t *testing.T) {
	a := newTestAPI(t, 0)

	w := a.do(http.MethodPost, "/api/users", map[string]string{
		"email":      "Cook@Example.com",
		"username":   "cook",
		"first_name": "Julia",
		"last_name":  "Child",
		"password":   "bon-appetit-1",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[types.UserResponse](t, w)
	assert.Equal(t, "cook@example.com", created.Email)
	assert.Equal(t, "cook", created.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = a.do(http.MethodPost, "/api/auth/token/login", map[string]string{"email": "cook@example.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Errors, "non_field_errors")

	w = a.do(http.MethodPost, "/api/auth/token/login", map[string]string{"email": "cook@example.com", "password": "bon-appetit-1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[types.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	w = a.do(http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[types.UserResponse](t, w).ID)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/api/auth/token/logout", nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users/me", nil, token).Code)
}

func TestRegisterValidation(t *testing.T) {
	a := newTestAPI(t, 0)
	testhelpers.CreateUser(t, a.db, "taken")

	tests := []struct {
		name   string
		body   map[string]string
		fields []string
	}{
		{
			name:   "missing fields",
			body:   map[string]string{"email": "a@example.com"},
			fields: []string{"username", "first_name", "last_name", "password"},
		},
		{
			name:   "bad email and short password",
			body:   map[string]string{"email": "nope", "username": "abc", "first_name": "A", "last_name": "B", "password": "short"},
			fields: []string{"email", "password"},
		},
		{
			name:   "duplicates",
			body:   map[string]string{"email": "taken@example.com", "username": "taken", "first_name": "A", "last_name": "B", "password": "long-enough-1"},
			fields: []string{"email", "username"},
		},
		{
			name:   "reserved username",
			body:   map[string]string{"email": "me@example.com", "username": "me", "first_name": "A", "last_name": "B", "password": "long-enough-1"},
			fields: []string{"username"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/users", tt.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			errs := decode[errorBody](t, w).Errors
			for _, f := range tt.fields {
				assert.Contains(t, errs, f)
			}
		})
	}

	w := a.do(http.MethodPost, "/api/users", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersPagination(t *testing.T) {
	a := newTestAPI(t, 0)
	for _, name := range []string{"alice", "bob", "carol"} {
		testhelpers.CreateUser(t, a.db, name)
	}

	w := a.do(http.MethodGet, "/api/users?limit=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.UserResponse]](t, w)
	assert.Equal(t, int64(3), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "alice", page.Results[0].Username)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Nil(t, page.Previous)

	w = a.do(http.MethodGet, "/api/users?limit=2&page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[types.Page[types.UserResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "carol", page.Results[0].Username)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.NotContains(t, *page.Previous, "page=")

	w = a.do(http.MethodGet, "/api/users?page=zero", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Errors, "page")
}

func TestGetUser(t *testing.T) {
	a := newTestAPI(t, 0)
	author := testhelpers.CreateUser(t, a.db, "author")

	w := a.do(http.MethodGet, "/api/users/"+author.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[types.UserResponse](t, w).IsSubscribed)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/users/not-a-uuid", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/users/me", nil, "").Code)
}

func TestSetPassword(t *testing.T) {
	a := newTestAPI(t, 0)
	user := testhelpers.CreateUser(t, a.db, "chef")
	token := a.token(user)

	w := a.do(http.MethodPost, "/api/users/set_password", map[string]string{
		"current_password": "not-it",
		"new_password":     "brand-new-pass",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Errors, "current_password")

	w = a.do(http.MethodPost, "/api/users/set_password", map[string]string{
		"current_password": testhelpers.TestPassword,
		"new_password":     "brand-new-pass",
	}, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodPost, "/api/auth/token/login", map[string]string{"email": user.Email, "password": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscriptions(t *testing.T) {
	a := newTestAPI(t, 0)
	reader := testhelpers.CreateUser(t, a.db, "reader")
	author := testhelpers.CreateUser(t, a.db, "author")
	testhelpers.CreateRecipe(t, a.db, author, "Borscht", nil)
	testhelpers.CreateRecipe(t, a.db, author, "Pelmeni", nil)
	token := a.token(reader)
	path := "/api/users/" + author.ID.String() + "/subscribe"

	w := a.do(http.MethodPost, path+"?recipes_limit=1", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[types.SubscriptionResponse](t, w)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(2), sub.RecipesCount)
	assert.Len(t, sub.Recipes, 1)

	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, path, nil, token).Code)
	self := "/api/users/" + reader.ID.String() + "/subscribe"
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, self, nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, path+"?recipes_limit=-1", nil, token).Code)

	w = a.do(http.MethodGet, "/api/users/subscriptions", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.SubscriptionResponse]](t, w)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "author", page.Results[0].Username)
	assert.Len(t, page.Results[0].Recipes, 2)

	w = a.do(http.MethodGet, "/api/users/"+author.ID.String(), nil, token)
	assert.True(t, decode[types.UserResponse](t, w).IsSubscribed)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path, nil, token).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, path, nil, "").Code)
}
