package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/rishabhsingh-git/photography-website-sub000/internal/api/http"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/config"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/events"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/guest"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/observability"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/persistence"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository/memory"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/service"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		identities repository.IdentityRepository
		users      repository.UserRepository
	)
	if pg.Enabled() {
		identities = repository.NewIdentityRepository(pg.PoolHandle())
		users = repository.NewUserRepository(pg.PoolHandle())
	} else {
		store := memory.NewStore()
		identities, users = store, store
	}

	issuer, err := auth.NewIssuer(cfg.Auth, auth.SystemClock{})
	if err != nil {
		logger.Fatal("failed to build token issuer", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	bridge := guest.NewBridge(identities, guest.NewRedisSessions(redis.Client, "", cfg.Guest.SessionTTL()), logger.Named("guest"))
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Users:      users,
		Identities: identities,
		Issuer:     issuer,
		Bridge:     bridge,
		Dispatcher: dispatcher,
		Logger:     logger.Named("auth"),
	})

	app := httptransport.NewApp(httptransport.ServerDeps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  observability.NewMetrics(),
		Auth:     authService,
		Issuer:   issuer,
		Bridge:   bridge,
		Postgres: pg,
		Redis:    redis,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
