package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts and author subscriptions.
type UserHandler struct {
	userService         service.IUserService
	subscriptionService service.ISubscriptionService
	tokens              middleware.TokenValidator
	pageSize            int
}

func NewUserHandler(userService service.IUserService, subscriptionService service.ISubscriptionService, tokens middleware.TokenValidator, pageSize int) *UserHandler {
	return &UserHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
		tokens:              tokens,
		pageSize:            pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.tokens)
	optionalAuth := middleware.OptionalAuth(h.tokens)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optionalAuth, h.List)
		users.GET("/me", requireAuth, h.Me)
		users.POST("/set_password", requireAuth, h.SetPassword)
		users.GET("/subscriptions", requireAuth, h.Subscriptions)
		users.GET("/:id", optionalAuth, h.Get)
		users.POST("/:id/subscribe", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, registeredUser(user))
}

func (h *UserHandler) List(c *gin.Context) {
	p, err := paginate(c, h.pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	users, count, err := h.userService.List(c.Request.Context(), middleware.UserID(c), p.limit, p.offset())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, count, users))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), &userID, userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id", "user")
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req types.SetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), userID, &req); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows with a preview of
// their recipes, capped by recipes_limit.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	p, err := paginate(c, h.pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	recipesLimit, err := intQuery(c, "recipes_limit", 0)
	if err != nil {
		c.Error(err)
		return
	}

	authors, count, err := h.subscriptionService.List(c.Request.Context(), userID, p.limit, p.offset(), recipesLimit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, count, authors))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	authorID, err := uuidParam(c, "id", "user")
	if err != nil {
		c.Error(err)
		return
	}
	recipesLimit, err := intQuery(c, "recipes_limit", 0)
	if err != nil {
		c.Error(err)
		return
	}

	author, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, authorID, recipesLimit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, author)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		c.Error(err)
		return
	}
	authorID, err := uuidParam(c, "id", "user")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), userID, authorID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func registeredUser(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
