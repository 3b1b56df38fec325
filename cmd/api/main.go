package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/daleelcare/daleelcare-backend/api/routes"
	"github.com/daleelcare/daleelcare-backend/internal/bookings"
	"github.com/daleelcare/daleelcare-backend/internal/history"
	"github.com/daleelcare/daleelcare-backend/internal/matching"
	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/internal/providers"
	"github.com/daleelcare/daleelcare-backend/internal/wallet"
	"github.com/daleelcare/daleelcare-backend/pkg/config"
	"github.com/daleelcare/daleelcare-backend/pkg/db"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
	"github.com/daleelcare/daleelcare-backend/pkg/migrate"
	"github.com/daleelcare/daleelcare-backend/pkg/redis"
	"github.com/daleelcare/daleelcare-backend/pkg/sheets"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	bookingsRepo := bookings.NewRepository(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())
	walletRepo := wallet.NewRepository(dbClient.DB())
	providersRepo := providers.NewRepository(dbClient.DB())
	historyRepo := history.NewRepository(dbClient.DB())

	historyService, err := history.NewService(historyRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}

	matcher, err := matching.NewService(providersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create matching service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(walletRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	providerService, err := providers.NewService(providersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create providers service", err)
		os.Exit(1)
	}

	sink, err := sheets.NewClient(
		cfg.Outbox.SinkURL,
		sheets.WithToken(cfg.Outbox.SinkToken),
		sheets.WithTimeout(cfg.Outbox.SendTimeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox sink", err)
		os.Exit(1)
	}

	dispatcher, err := outbox.NewDispatcher(outboxRepo, sink, logg, outbox.Policy{
		BatchSize:          cfg.Outbox.BatchSize,
		MaxAttempts:        cfg.Outbox.MaxAttempts,
		BackoffBaseMinutes: cfg.Outbox.BackoffBaseMinutes,
		SendTimeout:        cfg.Outbox.SendTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox dispatcher", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(
		dbClient,
		bookingsRepo,
		outboxRepo,
		walletRepo,
		providersRepo,
		matcher,
		historyService,
		logg,
		"",
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			bookingService,
			providerService,
			walletService,
			dispatcher,
			outboxRepo,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
