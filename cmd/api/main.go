package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.New,
			newDatabase,
			newRedis,
			newImageStore,
			service.NewImageService,
			newAuthService,
			service.NewUserService,
			service.NewCatalogService,
			service.NewRecipeService,
			service.NewMembershipService,
			service.NewSubscriptionService,
			service.NewShoppingListService,
			newRateLimiters,
			newRouter,
			server.NewServer,
		),
		fx.WithLogger(func(log *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Desugar()}
		}),
		fx.Invoke(func(*server.Server) {}),
	).Run()
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (*gorm.DB, error) {
	db, err := database.NewGorm(cfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.RunMigrations(db, log); err != nil {
			_ = database.Close(db)
			return nil, err
		}
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return database.Close(db)
		},
	})
	return db, nil
}

// newRedis may return a nil client; see database.NewOptionalRedis.
func newRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (*redis.Client, error) {
	client, err := database.NewOptionalRedis(cfg, log)
	if err != nil || client == nil {
		return client, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newImageStore(cfg *config.Config, log *zap.SugaredLogger) (service.ImageStore, error) {
	if cfg.ImageStore == "s3" {
		s3cfg, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		log.Infow("storing images in S3", "bucket", s3cfg.BucketName, "region", s3cfg.Region)
		return service.NewS3ImageStore(s3cfg), nil
	}
	log.Infow("storing images on disk", "root", cfg.MediaRoot)
	return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
}

func newAuthService(db *gorm.DB, cfg *config.Config, client *redis.Client) *service.AuthService {
	var denylist service.TokenDenylist
	if client != nil {
		denylist = service.NewRedisTokenDenylist(client)
	}
	return service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist)
}

type rateLimiters struct {
	creation     *middleware.RateLimiter
	modification *middleware.RateLimiter
}

func newRateLimiters(cfg *config.Config, client *redis.Client, log *zap.SugaredLogger) rateLimiters {
	var counter middleware.Counter
	if client != nil {
		counter = middleware.NewRedisCounter(client)
	}
	return rateLimiters{
		creation:     middleware.NewRecipeCreationRateLimiter(counter, cfg.RecipeCreationLimit, cfg.RateLimitWindow, log),
		modification: middleware.NewRecipeModificationRateLimiter(counter, cfg.RecipeModificationLimit, cfg.RateLimitWindow, log),
	}
}

type routerParams struct {
	fx.In

	Config        *config.Config
	DB            *gorm.DB
	Log           *zap.SugaredLogger
	Auth          *service.AuthService
	Users         *service.UserService
	Catalog       *service.CatalogService
	Recipes       *service.RecipeService
	Memberships   *service.MembershipService
	Subscriptions *service.SubscriptionService
	ShoppingList  *service.ShoppingListService
	Limiters      rateLimiters
}

func newRouter(p routerParams) *gin.Engine {
	return router.SetupRouter(router.Dependencies{
		Config:              p.Config,
		DB:                  p.DB,
		Log:                 p.Log,
		AuthService:         p.Auth,
		UserService:         p.Users,
		CatalogService:      p.Catalog,
		RecipeService:       p.Recipes,
		MembershipService:   p.Memberships,
		SubscriptionService: p.Subscriptions,
		ShoppingListService: p.ShoppingList,
		CreationLimiter:     p.Limiters.creation,
		ModificationLimiter: p.Limiters.modification,
	})
}
