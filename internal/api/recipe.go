package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/render"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeHandler serves recipes, their favorite and cart toggles and the
// shopping list download.
type RecipeHandler struct {
	recipeService       service.IRecipeService
	membershipService   service.IMembershipService
	shoppingListService service.IShoppingListService
	tokens              middleware.TokenValidator
	creationLimiter     *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
	pageSize            int
	now                 func() time.Time
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	membershipService service.IMembershipService,
	shoppingListService service.IShoppingListService,
	tokens middleware.TokenValidator,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		membershipService:   membershipService,
		shoppingListService: shoppingListService,
		tokens:              tokens,
		pageSize:            pageSize,
		now:                 time.Now,
	}
}

// NewRecipeHandlerWithRateLimit limits creation per user and modification
// per user and recipe. Either limiter may be nil.
func NewRecipeHandlerWithRateLimit(
	recipeService service.IRecipeService,
	membershipService service.IMembershipService,
	shoppingListService service.IShoppingListService,
	tokens middleware.TokenValidator,
	pageSize int,
	creationLimiter, modificationLimiter *middleware.RateLimiter,
) *RecipeHandler {
	h := NewRecipeHandler(recipeService, membershipService, shoppingListService, tokens, pageSize)
	h.creationLimiter = creationLimiter
	h.modificationLimiter = modificationLimiter
	return h
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.tokens)
	optionalAuth := middleware.OptionalAuth(h.tokens)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", requireAuth, h.creationLimiter.PerUser(), h.CreateRecipe)
		recipes.PATCH("/:id", requireAuth, h.modificationLimiter.PerRecipe(), h.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", requireAuth, h.addTo(service.Favorites))
		recipes.DELETE("/:id/favorite", requireAuth, h.removeFrom(service.Favorites))
		recipes.POST("/:id/shopping_cart", requireAuth, h.addTo(service.ShoppingCart))
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.removeFrom(service.ShoppingCart))
	}
}

// ListRecipes filters by author, tags (slugs, any of), is_favorited and
// is_in_shopping_cart. The last two only apply to authenticated callers.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p, err := paginate(c, h.pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	filter := types.RecipeFilter{
		Viewer:   middleware.UserID(c),
		TagSlugs: c.QueryArray("tags"),
		Limit:    p.limit,
		Offset:   p.offset(),
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			c.Error(service.NewValidationError().Add("author", "A valid user id is required."))
			return
		}
		filter.AuthorID = &authorID
	}
	if filter.Viewer != nil {
		filter.OnlyFavorited = flagQuery(c, "is_favorited")
		filter.OnlyInCart = flagQuery(c, "is_in_shopping_cart")
	}

	recipes, count, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, count, recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		c.Error(err)
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		c.Error(err)
		return
	}
	var req types.RecipeRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := uuidParam(c, "id", "recipe")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addTo(kind service.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			c.Error(err)
			return
		}
		id, err := uuidParam(c, "id", "recipe")
		if err != nil {
			c.Error(err)
			return
		}

		recipe, err := h.membershipService.Add(c.Request.Context(), kind, userID, id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, recipe)
	}
}

func (h *RecipeHandler) removeFrom(kind service.MembershipKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := currentUser(c)
		if err != nil {
			c.Error(err)
			return
		}
		id, err := uuidParam(c, "id", "recipe")
		if err != nil {
			c.Error(err)
			return
		}

		if err := h.membershipService.Remove(c.Request.Context(), kind, userID, id); err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DownloadShoppingCart sends the caller's aggregated shopping list as an
// attachment in ?format=txt|csv|pdf.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		c.Error(service.NewValidationError().Add("format", "Choose one of txt, csv, pdf."))
		return
	}

	items, err := h.shoppingListService.Aggregate(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	doc, err := render.ShoppingList(format, items, h.now())
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Format.Filename()))
	c.Data(http.StatusOK, doc.Format.ContentType(), doc.Body)
}
