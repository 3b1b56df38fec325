package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

type fakeLateRepo struct {
	bookings   []models.Booking
	lastCutoff time.Time
}

func (f *fakeLateRepo) ListLateCheckins(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	f.lastCutoff = cutoff
	var out []models.Booking
	for _, b := range f.bookings {
		if !b.ScheduledAt.After(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

func TestLateCheckinJob_AppliesGrace(t *testing.T) {
	repo := &fakeLateRepo{
		bookings: []models.Booking{
			{
				ID:          uuid.New(),
				Status:      enums.BookingStatusAssigned,
				ScheduledAt: time.Now().UTC().Add(-2 * time.Hour),
			},
			{
				ID:          uuid.New(),
				Status:      enums.BookingStatusAccepted,
				ScheduledAt: time.Now().UTC().Add(2 * time.Hour),
			},
		},
	}

	job, err := NewLateCheckinJob(LateCheckinJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Grace:      30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewLateCheckinJob error: %v", err)
	}

	fixed := time.Now().UTC()
	job.(*lateCheckinJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := fixed.Add(-30 * time.Minute)
	if !repo.lastCutoff.Equal(want) {
		t.Fatalf("cutoff = %s, want %s", repo.lastCutoff, want)
	}
}
