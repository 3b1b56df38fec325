package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

const defaultLateCheckinGrace = 30 * time.Minute

// lateCheckinRepo lists assigned/accepted bookings whose scheduled time has
// passed without a check-in.
type lateCheckinRepo interface {
	ListLateCheckins(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

// LateCheckinJobParams configure the late check-in monitor.
type LateCheckinJobParams struct {
	Logger     *logger.Logger
	Repository lateCheckinRepo
	Grace      time.Duration
}

type lateCheckinJob struct {
	logg  *logger.Logger
	repo  lateCheckinRepo
	grace time.Duration
	now   func() time.Time
}

// NewLateCheckinJob builds the advisory monitor. It only flags bookings in
// the logs; it never transitions them.
func NewLateCheckinJob(params LateCheckinJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultLateCheckinGrace
	}
	return &lateCheckinJob{
		logg:  params.Logger,
		repo:  params.Repository,
		grace: grace,
		now:   time.Now,
	}, nil
}

func (j *lateCheckinJob) Name() string { return "late-checkin-monitor" }

func (j *lateCheckinJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	late, err := j.repo.ListLateCheckins(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("listing late check-ins: %w", err)
	}

	for _, booking := range late {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"booking_id":     booking.ID.String(),
			"booking_number": booking.BookingNumber,
			"status":         booking.Status,
			"scheduled_at":   booking.ScheduledAt,
		})
		j.logg.Warn(logCtx, "booking past scheduled time without check-in")
	}
	return nil
}
