package api_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestTagsEndpoints(t *testing.T) {
	a := newTestAPI(t, 0)
	admin := a.token(testhelpers.CreateAdmin(t, a.db, "admin"))
	member := a.token(testhelpers.CreateUser(t, a.db, "member"))

	// Permission is checked before the payload.
	w := a.do(http.MethodPost, "/api/tags", map[string]string{"name": ""}, member)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/tags", map[string]string{}, "").Code)

	w = a.do(http.MethodPost, "/api/tags", map[string]string{"name": "Breakfast", "color": "orange"}, admin)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Errors, "color")

	w = a.do(http.MethodPost, "/api/tags", map[string]string{"name": "Breakfast", "color": "#e26c2d"}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tag := decode[models.Tag](t, w)
	assert.Equal(t, "breakfast", tag.Slug)
	assert.Equal(t, "#E26C2D", tag.Color)

	w = a.do(http.MethodGet, "/api/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Tag](t, w), 1)

	path := fmt.Sprintf("/api/tags/%d", tag.ID)
	w = a.do(http.MethodPatch, path, map[string]string{"name": "Brunch", "color": "#E26C2D", "slug": "brunch"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "brunch", decode[models.Tag](t, w).Slug)

	w = a.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Brunch", decode[models.Tag](t, w).Name)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/tags/abc", nil, "").Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, nil, "").Code)
}

func TestIngredientsEndpoints(t *testing.T) {
	a := newTestAPI(t, 0)
	admin := a.token(testhelpers.CreateAdmin(t, a.db, "admin"))
	member := a.token(testhelpers.CreateUser(t, a.db, "member"))
	testhelpers.CreateIngredient(t, a.db, "мука", "г")
	testhelpers.CreateIngredient(t, a.db, "молоко", "мл")
	testhelpers.CreateIngredient(t, a.db, "сахар", "г")

	w := a.do(http.MethodGet, "/api/ingredients?name="+url.QueryEscape("М"), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]models.Ingredient](t, w)
	assert.Len(t, found, 2)

	w = a.do(http.MethodGet, "/api/ingredients", nil, "")
	assert.Len(t, decode[[]models.Ingredient](t, w), 3)

	body := map[string]string{"name": "Salt", "measurement_unit": "g"}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/ingredients", body, member).Code)

	w = a.do(http.MethodPost, "/api/ingredients", body, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	salt := decode[models.Ingredient](t, w)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/ingredients", body, admin).Code)

	w = a.do(http.MethodPost, "/api/ingredients", map[string]string{"name": "Pepper"}, admin)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"This field is required."}, decode[errorBody](t, w).Errors["measurement_unit"])

	path := fmt.Sprintf("/api/ingredients/%d", salt.ID)
	w = a.do(http.MethodPatch, path, map[string]string{"name": "Salt", "measurement_unit": "kg"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kg", decode[models.Ingredient](t, w).MeasurementUnit)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, nil, admin).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path, nil, admin).Code)
}
