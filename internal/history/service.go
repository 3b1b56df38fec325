package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

// Service records and reads the booking audit trail. Record is best-effort:
// it runs after the primary mutation has committed and a write failure is
// logged, never propagated, so the audit trail can never undo real work.
type Service interface {
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, bookingID uuid.UUID) ([]models.BookingHistory, error)
}

// Entry is one audit line to append.
type Entry struct {
	BookingID     uuid.UUID
	Action        enums.HistoryAction
	PerformedBy   uuid.UUID
	PerformerRole enums.ActorRole
	Note          string
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a history service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) {
	if entry.BookingID == uuid.Nil || !entry.Action.IsValid() {
		s.logg.Error(ctx, "dropping malformed history entry",
			fmt.Errorf("booking_id=%s action=%q", entry.BookingID, entry.Action))
		return
	}

	row := &models.BookingHistory{
		BookingID:     entry.BookingID,
		Action:        entry.Action,
		PerformedBy:   entry.PerformedBy,
		PerformerRole: entry.PerformerRole,
	}
	if note := strings.TrimSpace(entry.Note); note != "" {
		row.Note = &note
	}

	if err := s.repo.Create(ctx, row); err != nil {
		ctx = s.logg.WithBookingID(ctx, entry.BookingID.String())
		s.logg.Error(ctx, "failed to append booking history", err)
	}
}

func (s *service) List(ctx context.Context, bookingID uuid.UUID) ([]models.BookingHistory, error) {
	if bookingID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "booking id is required")
	}
	entries, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing booking history")
	}
	return entries, nil
}
