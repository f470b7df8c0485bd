package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/businessbook/directory/config"
	"github.com/businessbook/directory/internal/accounts"
	"github.com/businessbook/directory/internal/admin"
	"github.com/businessbook/directory/internal/backend"
	"github.com/businessbook/directory/internal/catalog"
	"github.com/businessbook/directory/internal/enterprises"
	"github.com/businessbook/directory/internal/favorites"
	"github.com/businessbook/directory/internal/middleware"
	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/realtime"
	"github.com/businessbook/directory/internal/search"
	"github.com/businessbook/directory/internal/session"
	"github.com/businessbook/directory/internal/traffic"
	"github.com/businessbook/directory/pkg/response"
	"github.com/businessbook/directory/pkg/utils"
)

type deps struct {
	cfg     *config.Config
	store   *catalog.Store
	counter traffic.Counter
	hub     *realtime.Hub
	logger  *zap.Logger
	// bcryptCost overrides the password hashing cost; zero uses the default.
	bcryptCost int
}

// newRouter builds the route table and returns it with the session registry
// so the caller can run its sweeper.
func newRouter(d deps) (*gin.Engine, *session.Registry) {
	cfg, logger := d.cfg, d.logger

	data := backend.NewSimulated(d.store, d.counter,
		backend.WithLatency(backend.DefaultLatency().Scaled(cfg.Backend.LatencyScale)),
		backend.WithLogger(logger),
	)
	engine := search.NewEngine(data, cfg.Backend.CallTimeout, logger)

	tokens := session.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	registry := session.NewRegistry(cfg.Admin.Marker, session.WithTTL(tokens.TTL()))
	dir := accounts.NewDirectory(utils.NewPasswordHasher(d.bcryptCost))
	favs := favorites.NewStore(d.store)
	registry.OnEvict(favs.Clear)

	sessionHandler := session.NewHandler(session.HandlerConfig{
		Registry: registry,
		Tokens:   tokens,
		Accounts: dir,
		Cleaners: []session.Cleaner{favs},
		Traffic:  d.counter,
		Logger:   logger,
	})
	accountHandler := accounts.NewHandler(dir, logger)
	enterpriseHandler := enterprises.NewHandler(data, engine, cfg.Backend.CallTimeout, logger)
	favoriteHandler := favorites.NewHandler(favs)
	adminHandler := admin.NewHandler(admin.NewActions(data, d.hub, cfg.Backend.CallTimeout, logger))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger, "/health", "/metrics"))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "enterprises": d.store.Len(), "catalog_version": d.store.Version()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/sessions", sessionHandler.Create)
	router.POST("/accounts/register", accountHandler.Register)

	authed := router.Group("", middleware.Session(tokens, registry))
	{
		s := authed.Group("/session")
		s.GET("", sessionHandler.Get)
		s.POST("/visitor", sessionHandler.EnterAsVisitor)
		s.POST("/login", sessionHandler.Login)
		s.POST("/logout", sessionHandler.Logout)

		screens := authed.Group("", middleware.PageViews(d.counter, logger))

		home := screens.Group("", middleware.RequireScreen(models.ScreenHome))
		home.GET("/enterprises", enterpriseHandler.List)
		home.GET("/enterprises/:id", enterpriseHandler.Get)
		home.GET("/domains", enterpriseHandler.Domains)

		screens.GET("/search", middleware.RequireScreen(models.ScreenSearch), enterpriseHandler.Search)

		favoriteHandler.Register(screens.Group("/favorites", middleware.RequireScreen(models.ScreenFavorites)))
		adminHandler.Register(screens.Group("/admin", middleware.RequireScreen(models.ScreenAdmin)))
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws/search", realtime.ServeSearch(realtime.SearchConfig{
		Hub:         d.hub,
		Engine:      engine,
		Tokens:      tokens,
		Registry:    registry,
		QuietPeriod: cfg.Search.QuietPeriod,
		Logger:      logger,
	}))

	return router, registry
}
