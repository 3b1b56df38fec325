package bookings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/internal/history"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
)

// Accept records the provider's own confirmation of an assignment. Only the
// assigned provider may accept; staff never set accepted_at.
func (s *service) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	if actor.Role != enums.ActorRoleProvider {
		return nil, apperrors.New(apperrors.CodeForbidden, "only the assigned provider can accept")
	}
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != enums.BookingStatusAssigned {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking is not awaiting acceptance")
	}
	if booking.AssignedProviderID == nil || *booking.AssignedProviderID != actor.ID {
		return nil, apperrors.New(apperrors.CodeForbidden, "booking is assigned to another provider")
	}

	now := s.now().UTC()
	booking.Status = enums.BookingStatusAccepted
	booking.AcceptedAt = &now

	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionAccepted,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
	})
	return booking, nil
}

// CheckIn marks the visit as started.
func (s *service) CheckIn(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireProviderOrStaff(actor, booking); err != nil {
		return nil, err
	}
	if booking.Status != enums.BookingStatusAccepted {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking must be accepted before check-in")
	}

	booking.Status = enums.BookingStatusInProgress

	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionCheckedIn,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
	})
	return booking, nil
}

// Complete closes the booking and debits the platform commission
// (agreed price minus provider share) to the provider's ledger in the same
// transaction as the status change.
func (s *service) Complete(ctx context.Context, actor Actor, id uuid.UUID, closeOutNote string) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireProviderOrStaff(actor, booking); err != nil {
		return nil, err
	}
	if !booking.Status.CanComplete() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking cannot be completed from its current status").
			WithDetails(map[string]string{"status": string(booking.Status)})
	}

	now := s.now().UTC()
	booking.Status = enums.BookingStatusCompleted
	booking.CompletedAt = &now
	booking.CompletedBy = &actor.ID
	if note := trimToPtr(closeOutNote); note != nil {
		booking.CloseOutNote = note
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, booking); err != nil {
			return err
		}

		if booking.AssignedProviderID == nil || booking.AgreedPrice == nil || booking.ProviderShare == nil {
			return nil
		}
		commission := booking.AgreedPrice.Sub(*booking.ProviderShare)
		if commission.IsZero() {
			return nil
		}
		bookingID := booking.ID
		entry := &models.WalletEntry{
			ProviderID: *booking.AssignedProviderID,
			Amount:     commission.Neg(),
			Reason:     enums.WalletReasonPlatformFee,
			BookingID:  &bookingID,
		}
		return s.walletRepo.WithTx(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "completing booking")
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionCompleted,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          closeOutNote,
	})
	return booking, nil
}

// Cancel closes the booking with a mandatory reason.
func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Booking, error) {
	return s.close(ctx, actor, id, reason, enums.BookingStatusCancelled, enums.HistoryActionCancelled)
}

// Reject closes the booking as declined, with a mandatory reason.
func (s *service) Reject(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Booking, error) {
	return s.close(ctx, actor, id, reason, enums.BookingStatusRejected, enums.HistoryActionRejected)
}

func (s *service) close(ctx context.Context, actor Actor, id uuid.UUID, reason string, status enums.BookingStatus, action enums.HistoryAction) (*models.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "a reason is required")
	}
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireProviderOrStaff(actor, booking); err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking is already closed")
	}

	booking.Status = status

	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        action,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          strings.TrimSpace(reason),
	})
	return booking, nil
}

// requireProviderOrStaff allows staff always, and the assigned provider on
// their own booking.
func requireProviderOrStaff(actor Actor, booking *models.Booking) error {
	if actor.Role.IsStaff() {
		return nil
	}
	if actor.Role == enums.ActorRoleProvider &&
		booking.AssignedProviderID != nil &&
		*booking.AssignedProviderID == actor.ID {
		return nil
	}
	return apperrors.New(apperrors.CodeForbidden, "not allowed to act on this booking")
}
