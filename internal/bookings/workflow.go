package bookings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daleelcare/daleelcare-backend/internal/history"
	"github.com/daleelcare/daleelcare-backend/internal/matching"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
	"github.com/daleelcare/daleelcare-backend/pkg/types"
)

// ConfirmDeal marks phase-1 client agreement. Re-confirming an already
// confirmed booking is a no-op. The phase's audit entry is the PRICED row
// written by SavePricing; the confirmation marker itself is not audited.
func (s *service) ConfirmDeal(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking is closed")
	}
	if booking.DealConfirmedAt != nil {
		return booking, nil
	}

	now := s.now().UTC()
	booking.DealConfirmedAt = &now
	booking.DealConfirmedBy = &actor.ID
	if booking.Status == enums.BookingStatusNew {
		booking.Status = enums.BookingStatusConfirmed
	}

	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// SavePricing writes the agreed price and internal note together. Re-saving
// overwrites the price and appends a fresh PRICED entry.
func (s *service) SavePricing(ctx context.Context, actor Actor, id uuid.UUID, input PricingInput) (*models.Booking, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if !input.AgreedPrice.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "agreed price must be positive")
	}

	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking is closed")
	}
	if booking.DealConfirmedAt == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "deal must be confirmed before pricing")
	}
	if booking.ProviderShare != nil && booking.ProviderShare.GreaterThan(input.AgreedPrice) {
		return nil, apperrors.New(apperrors.CodeValidation, "new agreed price is below the recorded provider share")
	}

	booking.AgreedPrice = &input.AgreedPrice
	if note := trimToPtr(input.InternalNote); note != nil {
		booking.InternalNote = note
	}

	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionPriced,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          "agreed price set to " + input.AgreedPrice.StringFixed(2),
	})
	return booking, nil
}

// Candidates runs the phase-2 matcher. Read-only, safe to call repeatedly,
// but gated on phase-1 completion like the rest of the assignment flow.
func (s *service) Candidates(ctx context.Context, id uuid.UUID, limit int) (*matching.Lists, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Phase1Complete() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "client agreement phase is not complete")
	}

	return s.matcher.Candidates(ctx, matching.Query{
		City:  booking.City,
		Lat:   booking.ClientLat,
		Lng:   booking.ClientLng,
		Limit: limit,
	})
}

// SaveProviderShare is the phase-3 write, bounded by 0 <= share <= agreed.
func (s *service) SaveProviderShare(ctx context.Context, actor Actor, id uuid.UUID, share decimal.Decimal) (*models.Booking, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking is closed")
	}
	if booking.AgreedPrice == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "agreed price must be set before the provider share")
	}
	if err := validateShare(share, *booking.AgreedPrice); err != nil {
		return nil, err
	}

	booking.ProviderShare = &share

	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionProviderShareSet,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          "provider share set to " + share.StringFixed(2),
	})
	return booking, nil
}

// Assign is phase 4: the only phase that moves the externally visible status.
// All preconditions are checked before any write, so a blocked assignment
// leaves no trace.
func (s *service) Assign(ctx context.Context, actor Actor, id uuid.UUID, providerID uuid.UUID, policy types.PlatformPolicy) (*models.Booking, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanAssign() {
		return nil, apperrors.New(apperrors.CodeStateConflict, "booking cannot be assigned in its current status").
			WithDetails(map[string]string{"status": string(booking.Status)})
	}
	if booking.AgreedPrice == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "agreed price is not set")
	}
	if booking.ProviderShare == nil {
		return nil, apperrors.New(apperrors.CodeStateConflict, "provider share is not set")
	}

	provider, err := s.assignableProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDebtLimit(ctx, provider.UserID, policy); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking.Status = enums.BookingStatusAssigned
	booking.AssignedProviderID = &provider.UserID
	booking.AssignedBy = &actor.ID
	booking.AssignedRole = actor.Role
	booking.AssignedAt = &now
	booking.AcceptedAt = nil

	if err := s.saveBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionAssigned,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          assignmentNote(*booking.AgreedPrice, *booking.ProviderShare),
	})
	return booking, nil
}

func trimToPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
