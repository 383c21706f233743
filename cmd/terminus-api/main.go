package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lexterminus/terminus-api/api/swagger"
	"github.com/lexterminus/terminus-api/internal/handler"
	"github.com/lexterminus/terminus-api/internal/middleware"
	"github.com/lexterminus/terminus-api/internal/repository"
	"github.com/lexterminus/terminus-api/internal/service"
	"github.com/lexterminus/terminus-api/pkg/cache"
	"github.com/lexterminus/terminus-api/pkg/config"
	"github.com/lexterminus/terminus-api/pkg/database"
	"github.com/lexterminus/terminus-api/pkg/logger"
	corsmiddleware "github.com/lexterminus/terminus-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lexterminus/terminus-api/pkg/middleware/requestid"
	"github.com/lexterminus/terminus-api/pkg/storage"
)

// @title Terminus API
// @version 1.0.0
// @description Legal deadline tracking with business-day projection
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, view caching disabled", "error", err)
		}
	}

	validate := validator.New()

	termRepo := repository.NewTermRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Query.CacheTTL, logr, redisClient != nil)
	calendarSvc := service.NewCalendarService(logr)
	settingsSvc := service.NewSettingsService(settingsRepo, calendarSvc, cacheSvc, logr)
	recalcSvc := service.NewRecalcService(termRepo, settingsSvc, calendarSvc, cacheSvc, logr)
	settingsSvc.AttachRecalculator(recalcSvc)
	termSvc := service.NewTermService(termRepo, settingsSvc, calendarSvc, cacheSvc, validate, logr)
	querySvc := service.NewQueryService(termRepo, settingsSvc, calendarSvc, cacheSvc, metricsSvc, logr)
	transferSvc := service.NewTransferService(termRepo, querySvc, cacheSvc, logr)

	if cfg.Export.Dir != "" && cfg.Export.SigningSecret != "" {
		archive, err := storage.NewLocalStorage(cfg.Export.Dir)
		if err != nil {
			logr.Sugar().Warnw("export archive unavailable", "dir", cfg.Export.Dir, "error", err)
		} else {
			signer := storage.NewSignedURLSigner(cfg.Export.SigningSecret, cfg.Export.URLTTL)
			transferSvc.AttachArchive(archive, signer)
		}
	}

	termHandler := handler.NewTermHandler(termSvc)
	queryHandler := handler.NewQueryHandler(querySvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	transferHandler := handler.NewTransferHandler(transferSvc, cfg.Transfer.ImportMaxBytes)
	recalcHandler := handler.NewRecalcHandler(recalcSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/terms", termHandler.List)
		api.POST("/terms", termHandler.Create)
		api.GET("/terms/query", queryHandler.Query)
		api.GET("/terms/export", transferHandler.ExportCSV)
		api.GET("/terms/export/pdf", transferHandler.ExportPDF)
		api.POST("/terms/import", transferHandler.Import)
		api.POST("/terms/clear", termHandler.Clear)
		api.GET("/terms/:id", termHandler.Get)
		api.PUT("/terms/:id", termHandler.Update)
		api.DELETE("/terms/:id", termHandler.Delete)

		api.GET("/term-types", termHandler.ListTypes)

		api.GET("/settings", settingsHandler.Get)
		api.PUT("/settings", settingsHandler.Update)
		api.POST("/settings/reset", settingsHandler.Reset)

		api.POST("/recalculate", recalcHandler.Run)

		api.GET("/exports/:name", transferHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
