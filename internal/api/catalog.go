package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CatalogHandler serves tags and ingredients. Reads are public, writes
// need an admin.
type CatalogHandler struct {
	catalogService service.ICatalogService
	tokens         middleware.TokenValidator
}

func NewCatalogHandler(catalogService service.ICatalogService, tokens middleware.TokenValidator) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, tokens: tokens}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.tokens)

	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.GET("/:id", h.GetTag)
		tags.POST("", requireAuth, h.CreateTag)
		tags.PATCH("/:id", requireAuth, h.UpdateTag)
		tags.DELETE("/:id", requireAuth, h.DeleteTag)
	}

	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", requireAuth, h.CreateIngredient)
		ingredients.PATCH("/:id", requireAuth, h.UpdateIngredient)
		ingredients.DELETE("/:id", requireAuth, h.DeleteIngredient)
	}
}

// admin checks the caller before the payload is looked at.
func (h *CatalogHandler) admin(c *gin.Context) (uuid.UUID, error) {
	userID, err := currentUser(c)
	if err != nil {
		return uuid.Nil, err
	}
	if err := h.catalogService.Authorize(c.Request.Context(), userID); err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.catalogService.ListTags(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	id, err := uintParam(c, "id", "tag")
	if err != nil {
		c.Error(err)
		return
	}

	tag, err := h.catalogService.GetTag(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	userID, err := h.admin(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req types.TagRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	tag, err := h.catalogService.CreateTag(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	userID, err := h.admin(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := uintParam(c, "id", "tag")
	if err != nil {
		c.Error(err)
		return
	}
	var req types.TagRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	tag, err := h.catalogService.UpdateTag(c.Request.Context(), userID, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	userID, err := h.admin(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := uintParam(c, "id", "tag")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.catalogService.DeleteTag(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListIngredients supports a case-insensitive name prefix in ?name=.
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.catalogService.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	id, err := uintParam(c, "id", "ingredient")
	if err != nil {
		c.Error(err)
		return
	}

	ingredient, err := h.catalogService.GetIngredient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	userID, err := h.admin(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req types.IngredientRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	ingredient, err := h.catalogService.CreateIngredient(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	userID, err := h.admin(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := uintParam(c, "id", "ingredient")
	if err != nil {
		c.Error(err)
		return
	}
	var req types.IngredientRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	ingredient, err := h.catalogService.UpdateIngredient(c.Request.Context(), userID, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *CatalogHandler) DeleteIngredient(c *gin.Context) {
	userID, err := h.admin(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := uintParam(c, "id", "ingredient")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.catalogService.DeleteIngredient(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
