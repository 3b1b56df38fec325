package cron

import (
	"context"
	"fmt"

	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

// OutboxDispatchJobParams configure the periodic outbox drain.
type OutboxDispatchJobParams struct {
	Logger     *logger.Logger
	Dispatcher outbox.Dispatcher
}

type outboxDispatchJob struct {
	logg       *logger.Logger
	dispatcher outbox.Dispatcher
}

// NewOutboxDispatchJob wraps the outbox dispatcher as a cron job.
func NewOutboxDispatchJob(params OutboxDispatchJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("outbox dispatcher required")
	}
	return &outboxDispatchJob{
		logg:       params.Logger,
		dispatcher: params.Dispatcher,
	}, nil
}

func (j *outboxDispatchJob) Name() string { return "outbox-dispatch" }

func (j *outboxDispatchJob) Run(ctx context.Context) error {
	result, err := j.dispatcher.Dispatch(ctx)
	if err != nil {
		return fmt.Errorf("outbox dispatch: %w", err)
	}
	if result.Processed == 0 {
		return nil
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"processed": result.Processed,
		"sent":      result.Sent,
		"failed":    result.Failed,
	})
	j.logg.Info(logCtx, "outbox dispatch pass complete")
	return nil
}
