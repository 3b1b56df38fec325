package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

const (
	defaultPollMs = 30000
	maxBackoff    = 5 * time.Minute
	jitterWindow  = 500 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbPinger interface {
	Ping(context.Context) error
}

type ServiceParams struct {
	Logger         *logger.Logger
	DB             dbPinger
	Dispatcher     outbox.Dispatcher
	PollIntervalMS int
}

// Service drives the outbox dispatcher on a fixed polling cadence. A drained
// pass sleeps the full interval; delivery errors back off up to maxBackoff.
type Service struct {
	logg         *logger.Logger
	db           dbPinger
	dispatcher   outbox.Dispatcher
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Dispatcher == nil {
		return nil, errors.New("outbox dispatcher is required")
	}

	pollMs := params.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}

	return &Service{
		logg:         params.Logger,
		db:           params.DB,
		dispatcher:   params.Dispatcher,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.db.Ping(ctx); err != nil {
		s.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}

	backoff := s.pollInterval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox dispatcher context canceled")
			return ctx.Err()
		default:
		}

		result, err := s.dispatcher.Dispatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox dispatch pass failed", err)
			backoff = nextBackoff(backoff, s.pollInterval)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = s.pollInterval

		if result.Processed > 0 {
			passCtx := s.logg.WithFields(ctx, map[string]any{
				"processed": result.Processed,
				"sent":      result.Sent,
				"failed":    result.Failed,
			})
			s.logg.Info(passCtx, "outbox dispatch pass complete")
			// More rows may already be due; poll again immediately.
			continue
		}

		if err := s.sleep(ctx, withJitter(s.pollInterval)); err != nil {
			return err
		}
	}
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, floor time.Duration) time.Duration {
	next := current * 2
	if next < floor {
		next = floor
	}
	if next > maxBackoff {
		next = maxBackoff
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
