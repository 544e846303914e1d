package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/devevent-api/api/swagger"
	"github.com/noah-isme/devevent-api/internal/handler"
	internalmiddleware "github.com/noah-isme/devevent-api/internal/middleware"
	"github.com/noah-isme/devevent-api/internal/repository"
	"github.com/noah-isme/devevent-api/internal/service"
	"github.com/noah-isme/devevent-api/pkg/cache"
	"github.com/noah-isme/devevent-api/pkg/config"
	"github.com/noah-isme/devevent-api/pkg/database"
	"github.com/noah-isme/devevent-api/pkg/jobs"
	"github.com/noah-isme/devevent-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/devevent-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/devevent-api/pkg/middleware/requestid"
	"github.com/noah-isme/devevent-api/pkg/storage"
)

// @title DevEvent API
// @version 1.0.0
// @description Create and list developer events.
// @BasePath /api
// @schemes http https

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

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	media, localDir, err := newMediaStore(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("init media store: %w", err)
	}

	metrics := service.NewMetricsService()
	eventRepo := repository.NewEventRepository(db, metrics)
	cacheRepo := repository.NewCacheRepository(redisClient, "devevent")
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Events.CacheTTL, logr, cfg.Events.CacheEnabled && redisClient != nil)

	cleanupQueue := jobs.NewQueue("media-cleanup", service.NewMediaCleanupHandler(media, metrics, logr), jobs.QueueConfig{
		Workers:    cfg.Jobs.CleanupWorkers,
		MaxRetries: cfg.Jobs.CleanupRetries,
		RetryDelay: cfg.Jobs.CleanupRetryDelay,
		Logger:     logr,
	})
	cleanupQueue.Start(context.Background())

	eventSvc := service.NewEventService(eventRepo, media, cleanupQueue, cacheSvc, metrics, validator.New(), logr, service.EventServiceConfig{
		MediaFolder:     cfg.Media.Folder,
		UploadTimeout:   cfg.Media.UploadTimeout,
		PersistTimeout:  cfg.Events.PersistTimeout,
		MaxImageBytes:   cfg.Media.MaxFileSizeBytes,
		AllowedMIMEs:    cfg.Media.AllowedMIMEs,
		SlugMaxAttempts: cfg.Events.SlugMaxAttempts,
		CacheTTL:        cfg.Events.CacheTTL,
	})
	exportSvc := service.NewExportService(eventSvc, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Media.MaxFileSizeBytes + 1<<20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	checks := map[string]handler.Pinger{"database": eventRepo}
	if redisClient != nil {
		checks["cache"] = cacheRepo
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks, logr)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if localDir != "" {
		r.Static("/media", localDir)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	eventHandler := handler.NewEventHandler(eventSvc, exportSvc)
	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/events", eventHandler.Create)
		api.GET("/events", eventHandler.List)
		api.GET("/events/export", eventHandler.Export)
		api.GET("/events/:slug", eventHandler.GetBySlug)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "media_driver", cfg.Media.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http server shutdown", zap.Error(err))
	}
	if err := cleanupQueue.Stop(shutdownCtx); err != nil {
		logr.Warn("media cleanup queue shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
	return nil
}

// newMediaStore selects the image host driver. The returned directory is
// non-empty when images must be served by this process.
func newMediaStore(ctx context.Context, cfg config.MediaConfig) (storage.MediaStore, string, error) {
	switch cfg.Driver {
	case config.MediaDriverS3:
		store, err := storage.NewS3MediaStore(ctx, storage.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case config.MediaDriverLocal, "":
		store, err := storage.NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}
