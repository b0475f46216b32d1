package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/RealCodeCrafter/trt-backend/internal/api/http"
	"github.com/RealCodeCrafter/trt-backend/internal/api/http/handlers"
	"github.com/RealCodeCrafter/trt-backend/internal/auth"
	"github.com/RealCodeCrafter/trt-backend/internal/config"
	"github.com/RealCodeCrafter/trt-backend/internal/events"
	"github.com/RealCodeCrafter/trt-backend/internal/mail"
	"github.com/RealCodeCrafter/trt-backend/internal/observability"
	"github.com/RealCodeCrafter/trt-backend/internal/persistence"
	"github.com/RealCodeCrafter/trt-backend/internal/repository"
	"github.com/RealCodeCrafter/trt-backend/internal/service"
	"github.com/RealCodeCrafter/trt-backend/internal/storage"
	"github.com/RealCodeCrafter/trt-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.UsingDevSecret {
		logger.Warn("JWT_SECRET not set, using development secret", zap.String("env", cfg.App.Env))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.SQL(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	catalogCache := redis.CatalogCache(cfg.Cache, logger)

	userRepo := repository.NewUserRepository(pg.SQL())
	partRepo := repository.NewPartRepository(pg.SQL())
	categoryRepo := repository.NewCategoryRepository(pg.SQL())

	bootstrapper := service.NewBootstrapper(userRepo, cfg.Auth.SuperAdminEmail, cfg.Auth.BcryptCost, os.Stderr, logger)
	if err := bootstrapper.Run(ctx); err != nil {
		logger.Fatal("super-admin bootstrap failed", zap.Error(err))
	}
	logger.Info("bootstrap finished", zap.String("state", bootstrapper.State().String()))

	store, err := newImageStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to init image storage", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartCacheInvalidator(dispatcher, catalogCache, logger)
	publisher := worker.NewKafkaPublisher(cfg.Kafka, logger)
	publisher.Start(dispatcher)
	defer publisher.Close() //nolint:errcheck

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(cfg.Auth, userRepo, tokens)
	partService := service.NewPartService(service.PartDependencies{
		Parts:      partRepo,
		Categories: categoryRepo,
		Store:      store,
		Cache:      catalogCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	categoryService := service.NewCategoryService(service.CategoryDependencies{
		Categories: categoryRepo,
		Parts:      partRepo,
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	contactService := service.NewContactService(mail.NewSMTPSender(cfg.Mail, logger), cfg.Contact)

	metrics := observability.NewMetrics("trt")

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimitMB * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:       handlers.NewAuthHandler(authService),
		Parts:      handlers.NewPartsHandler(partService, cfg.Upload.MaxFiles),
		Categories: handlers.NewCategoriesHandler(categoryService, cfg.Upload.MaxFiles),
		Contact:    handlers.NewContactHandler(contactService),
		Uploads:    handlers.NewUploadsHandler(store),
		Guard:      auth.NewAccessGuard(tokens),
		Metrics:    metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// newImageStore picks S3 when a bucket is configured, local disk otherwise.
func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.S3.Bucket != "" {
		baseURL := cfg.S3.PublicURL
		if baseURL == "" {
			baseURL = cfg.App.BaseURL
		}
		return storage.NewS3Store(ctx, cfg.S3, baseURL)
	}
	return storage.NewLocalStore(cfg.Upload.Dir, cfg.App.BaseURL)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
