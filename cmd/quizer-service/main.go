package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/cache"
	"github.com/SAP-F-2025/quizer-service/internal/config"
	"github.com/SAP-F-2025/quizer-service/internal/events"
	"github.com/SAP-F-2025/quizer-service/internal/handlers"
	"github.com/SAP-F-2025/quizer-service/internal/middleware"
	"github.com/SAP-F-2025/quizer-service/internal/monitoring"
	mongorepo "github.com/SAP-F-2025/quizer-service/internal/repositories/mongo"
	"github.com/SAP-F-2025/quizer-service/internal/repositories/postgres"
	attemptstore "github.com/SAP-F-2025/quizer-service/internal/repositories/redis"
	"github.com/SAP-F-2025/quizer-service/internal/services"
	"github.com/SAP-F-2025/quizer-service/internal/utils"
	"github.com/SAP-F-2025/quizer-service/internal/validator"
	"github.com/SAP-F-2025/quizer-service/pkg"
	"github.com/gin-gonic/gin"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterSweep    = 5 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)
	monitoring.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catalog
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := pkg.MigrateCatalog(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Running attempts and catalog cache
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// Question bank and runs
	mongoClient, mongoDB, err := pkg.NewMongoDatabase(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect mongodb", "error", err)
		}
	}()
	if err := mongorepo.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create mongodb indexes: %v", err)
	}

	eventPublisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		eventPublisher = events.NewMockEventPublisher(slogger)
	}
	defer func() {
		if err := eventPublisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	catalog := cache.NewCachedCatalog(
		postgres.NewCatalogPostgreSQL(db),
		cache.NewRedisCache(redisClient, slogger),
		cfg.CatalogCacheTTL,
		slogger,
	)

	v := validator.New()
	serviceManager := services.NewServiceManager(services.Dependencies{
		Catalog:   catalog,
		Questions: mongorepo.NewQuestionMongo(mongoDB),
		Attempts:  attemptstore.NewAttemptRedis(redisClient, cfg.AttemptRetention),
		Runs:      mongorepo.NewRunMongo(mongoDB),
		Publisher: eventPublisher,
		Validator: v,
		Logger:    slogger,
	})

	var timeLimiter *middleware.UserRateLimiter
	if cfg.TimePollRate > 0 {
		timeLimiter = middleware.NewUserRateLimiter(cfg.TimePollRate, time.Minute)
		go sweepLimiter(ctx, timeLimiter)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handlerManager := handlers.NewHandlerManager(serviceManager, v, logger)
	handlerManager.SetupRoutes(router, handlers.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Resolver:       middleware.NewIdentityResolver(cfg.Auth),
		TimeLimiter:    timeLimiter,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Quizer service listening", "port", cfg.Port, "environment", cfg.Environment, "auth_mode", cfg.Auth.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func sweepLimiter(ctx context.Context, limiter *middleware.UserRateLimiter) {
	ticker := time.NewTicker(limiterSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup(limiterSweep)
		}
	}
}
