package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/pkg/config"
	"github.com/daleelcare/daleelcare-backend/pkg/db"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
	"github.com/daleelcare/daleelcare-backend/pkg/migrate"
	"github.com/daleelcare/daleelcare-backend/pkg/sheets"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-dispatcher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "outbox-dispatcher",
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

	sink, err := sheets.NewClient(
		cfg.Outbox.SinkURL,
		sheets.WithToken(cfg.Outbox.SinkToken),
		sheets.WithTimeout(cfg.Outbox.SendTimeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox sink", err)
		os.Exit(1)
	}

	dispatcher, err := outbox.NewDispatcher(outbox.NewRepository(dbClient.DB()), sink, logg, outbox.Policy{
		BatchSize:          cfg.Outbox.BatchSize,
		MaxAttempts:        cfg.Outbox.MaxAttempts,
		BackoffBaseMinutes: cfg.Outbox.BackoffBaseMinutes,
		SendTimeout:        cfg.Outbox.SendTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox dispatcher", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Logger:         logg,
		DB:             dbClient,
		Dispatcher:     dispatcher,
		PollIntervalMS: cfg.Outbox.PollIntervalMS,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox dispatcher service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
	})
	logg.Info(ctx, "starting outbox dispatcher")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox dispatcher stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "outbox dispatcher shutting down gracefully")
}
