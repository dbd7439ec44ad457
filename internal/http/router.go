package http

import (
	"context"
	"time"

	"github.com/dineqr/menuhub/internal/auth"
	"github.com/dineqr/menuhub/internal/cache"
	"github.com/dineqr/menuhub/internal/config"
	"github.com/dineqr/menuhub/internal/http/handlers"
	"github.com/dineqr/menuhub/internal/http/middlewares"
	"github.com/dineqr/menuhub/internal/observability"
	"github.com/dineqr/menuhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(cfg config.Config, pool *pgxpool.Pool, menuCache cache.Cache, prom *observability.Prom, reg *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	restaurantsRepo := postgres.NewRestaurantsRepo(pool, prom)
	menuRepo := postgres.NewMenuRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	authMw := middlewares.NewAuthMiddleware(jwtManager, usersRepo)
	ownershipMw := middlewares.NewOwnershipMiddleware(restaurantsRepo)

	authLimiter := middlewares.NewRateLimiter(cfg.AuthRPS, cfg.AuthBurst)
	publicLimiter := middlewares.NewRateLimiter(cfg.PublicRPS, cfg.PublicBurst)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	restaurantsHandler := handlers.NewRestaurantsHandler(restaurantsRepo, menuRepo, menuCache)
	menuHandler := handlers.NewMenuHandler(menuRepo, menuCache)
	qrHandler := handlers.NewQRCodeHandler(restaurantsRepo, cfg.PublicBaseURL)
	publicHandler := handlers.NewPublicHandler(restaurantsRepo, menuRepo, menuCache, prom, cfg.PublicBaseURL)

	// public surface
	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.Middleware())
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authMw.RequireAuth(), authHandler.Me)

	r.GET("/menu/:slug", publicLimiter.Middleware(), authMw.OptionalAuth(), publicHandler.Menu)
	r.POST("/qr/scan/:slug", publicLimiter.Middleware(), publicHandler.Scan)

	// owner surface
	restaurants := r.Group("/restaurants")
	restaurants.Use(authMw.RequireAuth())
	restaurants.POST("", restaurantsHandler.Create)
	restaurants.GET("", restaurantsHandler.List)

	owned := restaurants.Group("/:id")
	owned.Use(ownershipMw.RequireOwnership())
	owned.GET("", restaurantsHandler.Get)
	owned.PUT("", restaurantsHandler.Update)
	owned.DELETE("", restaurantsHandler.Delete)
	owned.PUT("/toggle-publish", restaurantsHandler.TogglePublish)

	owned.GET("/categories", menuHandler.ListCategories)
	owned.POST("/categories", menuHandler.CreateCategory)
	owned.PUT("/categories/:categoryId", menuHandler.UpdateCategory)
	owned.DELETE("/categories/:categoryId", menuHandler.DeleteCategory)

	owned.GET("/items", menuHandler.ListItems)
	owned.POST("/items", menuHandler.CreateItem)
	owned.PUT("/items/:itemId", menuHandler.UpdateItem)
	owned.DELETE("/items/:itemId", menuHandler.DeleteItem)
	owned.PUT("/items/:itemId/toggle-availability", menuHandler.ToggleItemAvailability)

	qrOwned := r.Group("/qr/restaurants/:id")
	qrOwned.Use(authMw.RequireAuth(), ownershipMw.RequireOwnership())
	qrOwned.POST("/generate", qrHandler.Generate)
	qrOwned.GET("", qrHandler.Get)

	return r
}
