package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daleelcare/daleelcare-backend/internal/bookings"
	"github.com/daleelcare/daleelcare-backend/internal/cron"
	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/pkg/config"
	"github.com/daleelcare/daleelcare-backend/pkg/db"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
	"github.com/daleelcare/daleelcare-backend/pkg/metrics"
	"github.com/daleelcare/daleelcare-backend/pkg/migrate"
	"github.com/daleelcare/daleelcare-backend/pkg/redis"
	"github.com/daleelcare/daleelcare-backend/pkg/sheets"
)

const lockKeyFormat = "daleelcare:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	dispatchJob, err := cron.NewOutboxDispatchJob(cron.OutboxDispatchJobParams{
		Logger:     logg,
		Dispatcher: dispatcher,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox dispatch job", err)
		os.Exit(1)
	}

	jobs := []cron.Job{dispatchJob}
	if cfg.Cron.LateCheckinEnabled {
		lateJob, err := cron.NewLateCheckinJob(cron.LateCheckinJobParams{
			Logger:     logg,
			Repository: bookings.NewRepository(dbClient.DB()),
			Grace:      cfg.Cron.LateCheckinGrace,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create late check-in job", err)
			os.Exit(1)
		}
		jobs = append(jobs, lateJob)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(jobs...)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"jobs": registry.Names(),
	})

	if cfg.Cron.MetricsListenAddr != "" {
		go serveMetrics(ctx, logg, cfg.Cron.MetricsListenAddr)
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "metrics listener stopped unexpectedly", err)
	}
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
