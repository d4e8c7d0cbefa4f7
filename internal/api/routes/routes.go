package routes

import (
	"time"

	"widget-dashboard-backend/internal/api/handlers"
	"widget-dashboard-backend/internal/api/middleware"
	"widget-dashboard-backend/internal/apiclient"
	"widget-dashboard-backend/internal/cache"
	"widget-dashboard-backend/internal/config"
	"widget-dashboard-backend/internal/logger"
	"widget-dashboard-backend/internal/repository"
	"widget-dashboard-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// SetupRoutes configures the router and all its dependencies. The returned
// shutdown function stops the refresh scheduler and the cache sweeper; call
// it before the process exits.
func SetupRoutes(db *gorm.DB, cfg *config.Config) (*gin.Engine, func()) {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg))

	validate := validator.New()

	// Response cache for upstream API payloads
	responseCache := cache.NewResponseCache(cache.Config{
		DefaultTTL:      cfg.Cache.DefaultTTL,
		MaxSize:         cfg.Cache.MaxSize,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})

	// Lookup cache for widget records
	lookupStore := cache.NewInMemoryCache(cache.DefaultConfig().DefaultTTL, cfg.Cache.CleanupInterval)
	ttlConfig := cache.DefaultTTLConfig()

	client := apiclient.NewClient(cfg.Client.Timeout)
	executor := apiclient.NewExecutor(apiclient.RetryPolicy{
		MaxRetries:        cfg.Retry.MaxRetries,
		BaseDelay:         cfg.Retry.BaseDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
	})

	widgetRepo := repository.NewWidgetRepository(db)

	widgetService := service.NewWidgetService(
		widgetRepo,
		validate,
		client,
		executor,
		responseCache,
		lookupStore,
		ttlConfig,
	)

	scheduler := service.NewRefreshScheduler(widgetService)
	scheduleExistingWidgets(widgetRepo, scheduler)

	widgetHandler := handlers.NewWidgetHandler(widgetService, scheduler)
	healthHandler := handlers.NewHealthHandler(db)

	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	v1 := router.Group("/api/v1")
	{
		widgets := v1.Group("/widgets")
		{
			widgets.GET("", widgetHandler.ListWidgets)
			widgets.POST("", widgetHandler.CreateWidget)
			widgets.POST("/test", widgetHandler.TestEndpoint)
			widgets.GET("/:id", widgetHandler.GetWidget)
			widgets.PUT("/:id", widgetHandler.UpdateWidget)
			widgets.DELETE("/:id", widgetHandler.DeleteWidget)
			widgets.GET("/:id/data", widgetHandler.GetWidgetData)
		}
	}

	shutdown := func() {
		scheduler.StopAll()
		responseCache.Stop()
	}
	return router, shutdown
}

// scheduleExistingWidgets starts auto-refresh for every stored widget
func scheduleExistingWidgets(repo *repository.WidgetRepository, scheduler *service.RefreshScheduler) {
	const pageSize = 100
	for offset := 0; ; offset += pageSize {
		widgets, _, err := repo.GetAll(pageSize, offset)
		if err != nil {
			logger.New().WithError(err).Warn("Failed to schedule widget refresh on startup")
			return
		}
		for _, w := range widgets {
			scheduler.Start(w.ID, time.Duration(w.RefreshIntervalSeconds)*time.Second)
		}
		if len(widgets) < pageSize {
			return
		}
	}
}
