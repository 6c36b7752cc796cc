package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/streamarena/pk-battle/internal/battle"
	"github.com/streamarena/pk-battle/internal/bootstrap"
	"github.com/streamarena/pk-battle/internal/challenge"
	"github.com/streamarena/pk-battle/internal/concurrency"
	"github.com/streamarena/pk-battle/internal/config"
	"github.com/streamarena/pk-battle/internal/database"
	"github.com/streamarena/pk-battle/internal/eventlog"
	"github.com/streamarena/pk-battle/internal/handler"
	"github.com/streamarena/pk-battle/internal/logger"
	"github.com/streamarena/pk-battle/internal/notify"
	"github.com/streamarena/pk-battle/internal/score"
	"github.com/streamarena/pk-battle/internal/server"
	"github.com/streamarena/pk-battle/internal/wallet"
)

const (
	serviceName     = "pk-battle"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		serviceName,
		cfg.Version,
		cfg.Environment,
		false,
	))

	if err := database.Migrate(cfg.GetDBConnString()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	dbPool, err := database.NewPool(context.Background(), cfg.GetDBConnString(), cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	eventBus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize event system: %v", err)
	}

	redisClient := bootstrap.InitializeBroadcast(cfg, eventBus)
	repos := bootstrap.InitializeRepositories(dbPool)

	eventLogService := eventlog.NewService(repos.EventLog)
	locks := concurrency.NewLockManager()

	battleService := battle.NewService(
		repos.Battle,
		repos.Stream,
		eventLogService,
		publisher,
		notify.NewLogNotifier(),
		challenge.NewLogBridge(),
		locks,
	)

	catalog, err := score.NewCatalog(repos.Gift, score.DefaultCatalogCacheSize)
	if err != nil {
		log.Fatalf("Failed to create gift catalog: %v", err)
	}

	scoreService := score.NewService(
		repos.Battle,
		repos.Score,
		catalog,
		wallet.NewLedgerStub(),
		eventLogService,
		publisher,
		locks,
	)

	sweeper, err := battle.NewSweeper(repos.Battle, battleService, cfg.SweepInterval)
	if err != nil {
		log.Fatalf("Failed to create sweeper: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}

	handler.InitValidator()

	srv := server.NewServer(cfg, dbPool, battleService, scoreService, eventLogService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:      srv,
		Sweeper:     sweeper,
		DBPool:      dbPool,
		RedisClient: redisClient,
	})
}
