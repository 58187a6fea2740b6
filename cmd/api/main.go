package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/Behnamfe76/contacts-directory/internal/api/http"
	"github.com/Behnamfe76/contacts-directory/internal/api/http/handlers"
	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/config"
	"github.com/Behnamfe76/contacts-directory/internal/events"
	"github.com/Behnamfe76/contacts-directory/internal/observability"
	"github.com/Behnamfe76/contacts-directory/internal/persistence"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
	"github.com/Behnamfe76/contacts-directory/internal/service"
	"github.com/Behnamfe76/contacts-directory/internal/worker"
	"github.com/Behnamfe76/contacts-directory/pkg/util/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	baseLogger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	logger := observability.ServiceLogger(baseLogger, cfg.App)
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	readiness := map[string]handlers.Pinger{"postgres": pg}

	var tokenCache auth.TokenCache
	switch cfg.TokenCache.Backend {
	case config.CacheBackendRedis:
		rds, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer rds.Close()
		readiness["redis"] = rds
		tokenCache = auth.NewRedisTokenCache(rds.Client)
	default:
		memory := auth.NewMemoryTokenCache()
		worker.StartTokenCacheSweeper(ctx, memory, cfg.TokenCache.SweepInterval(), metrics, logger)
		tokenCache = memory
	}
	logger.Info("token cache ready", zap.String("backend", cfg.TokenCache.Backend))

	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordScheme, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("invalid password scheme", zap.Error(err))
	}
	if cfg.Auth.PasswordScheme == config.PasswordSchemePlain {
		logger.Warn("passwords are stored and compared in cleartext")
	}
	if cfg.Auth.TrustCachedTokens {
		logger.Warn("cached tokens are returned without checking the password")
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Cache:      tokenCache,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, hasher, dispatcher, logger)
	contactService := service.NewContactService(contactRepo, dispatcher, logger)

	worker.StartEventSubscribers(
		service.NewAuditService(dispatcher, logger),
		service.NewTokenRevocation(dispatcher, authService, logger),
	)

	validator := validation.New()
	app := httptransport.NewApp(cfg.App.Name, logger, metrics)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Token:          handlers.NewTokenHandler(authService),
		Users:          handlers.NewUsersHandler(userService, validator),
		Contacts:       handlers.NewContactsHandler(contactService, validator),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, logger),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
