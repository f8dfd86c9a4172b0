package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Dependencies are the services and limiters the routes are built from.
// The limiters may be nil.
type Dependencies struct {
	Config              *config.Config
	DB                  *gorm.DB
	Log                 *zap.SugaredLogger
	AuthService         service.IAuthService
	UserService         service.IUserService
	CatalogService      service.ICatalogService
	RecipeService       service.IRecipeService
	MembershipService   service.IMembershipService
	SubscriptionService service.ISubscriptionService
	ShoppingListService service.IShoppingListService
	CreationLimiter     *middleware.RateLimiter
	ModificationLimiter *middleware.RateLimiter
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg.Environment.RequiresSecrets() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler(deps.Log))

	health := api.NewHealthHandler(deps.DB)
	health.RegisterRoutes(router)

	if cfg.ImageStore == "local" {
		router.Static(mediaPrefix(cfg.MediaURL), cfg.MediaRoot)
	}

	v1 := router.Group("/api")
	health.RegisterRoutes(v1)

	api.NewAuthHandler(deps.AuthService).RegisterRoutes(v1)
	api.NewUserHandler(deps.UserService, deps.SubscriptionService, deps.AuthService, cfg.PageSize).RegisterRoutes(v1)
	api.NewCatalogHandler(deps.CatalogService, deps.AuthService).RegisterRoutes(v1)
	api.NewRecipeHandlerWithRateLimit(
		deps.RecipeService,
		deps.MembershipService,
		deps.ShoppingListService,
		deps.AuthService,
		cfg.PageSize,
		deps.CreationLimiter,
		deps.ModificationLimiter,
	).RegisterRoutes(v1)

	return router
}

// mediaPrefix turns a media URL such as "/media/" into a route prefix.
func mediaPrefix(mediaURL string) string {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		return "/media"
	}
	return prefix
}
