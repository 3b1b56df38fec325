package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/internal/history"
	"github.com/daleelcare/daleelcare-backend/internal/matching"
	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/internal/providers"
	"github.com/daleelcare/daleelcare-backend/internal/wallet"
	pkgdb "github.com/daleelcare/daleelcare-backend/pkg/db"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
	"github.com/daleelcare/daleelcare-backend/pkg/types"
)

// Actor identifies who is driving a workflow call.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service orchestrates the booking lifecycle: intake, the four-phase
// negotiation, provider actions and close-out. Each phase is an independent
// call; a booking can sit between phases indefinitely.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*models.Booking, error)
	CreateAssigned(ctx context.Context, actor Actor, input CreateAssignedInput, policy types.PlatformPolicy) (*models.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, filter ListFilter) ([]models.Booking, error)

	ConfirmDeal(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error)
	SavePricing(ctx context.Context, actor Actor, id uuid.UUID, input PricingInput) (*models.Booking, error)
	Candidates(ctx context.Context, id uuid.UUID, limit int) (*matching.Lists, error)
	SaveProviderShare(ctx context.Context, actor Actor, id uuid.UUID, share decimal.Decimal) (*models.Booking, error)
	Assign(ctx context.Context, actor Actor, id uuid.UUID, providerID uuid.UUID, policy types.PlatformPolicy) (*models.Booking, error)

	Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error)
	CheckIn(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID, closeOutNote string) (*models.Booking, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Booking, error)
	Reject(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Booking, error)

	History(ctx context.Context, id uuid.UUID) ([]models.BookingHistory, error)
}

// CreateInput captures a customer intake request.
type CreateInput struct {
	ServiceID     uuid.UUID
	CustomerID    uuid.UUID
	CustomerName  string
	CustomerPhone string
	City          string
	AddressText   string
	ClientLat     *float64
	ClientLng     *float64
	Hours         int
	TimeSlot      string
	ScheduledAt   time.Time
	PaymentMethod enums.PaymentMethod
}

// CreateAssignedInput is the staff shortcut that creates a booking already
// priced and assigned in one step.
type CreateAssignedInput struct {
	CreateInput
	AgreedPrice   decimal.Decimal
	ProviderShare decimal.Decimal
	ProviderID    uuid.UUID
	InternalNote  string
}

// PricingInput is the phase-1 pricing write; price and note commit together.
type PricingInput struct {
	AgreedPrice  decimal.Decimal
	InternalNote string
}

type service struct {
	tx            TxRunner
	repo          Repository
	outboxRepo    outbox.Repository
	walletRepo    wallet.Repository
	providersRepo providers.Repository
	matcher       matching.Service
	history       history.Service
	logg          *logger.Logger
	destination   string
	now           func() time.Time
}

// NewService wires the booking workflow service.
func NewService(
	tx TxRunner,
	repo Repository,
	outboxRepo outbox.Repository,
	walletRepo wallet.Repository,
	providersRepo providers.Repository,
	matcher matching.Service,
	historySvc history.Service,
	logg *logger.Logger,
	destination string,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if outboxRepo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if walletRepo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if providersRepo == nil {
		return nil, fmt.Errorf("providers repository required")
	}
	if matcher == nil {
		return nil, fmt.Errorf("matching service required")
	}
	if historySvc == nil {
		return nil, fmt.Errorf("history service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(destination) == "" {
		destination = "sheet"
	}
	return &service{
		tx:            tx,
		repo:          repo,
		outboxRepo:    outboxRepo,
		walletRepo:    walletRepo,
		providersRepo: providersRepo,
		matcher:       matcher,
		history:       historySvc,
		logg:          logg,
		destination:   destination,
		now:           time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*models.Booking, error) {
	booking, err := s.buildBooking(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.persistNewBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionCreated,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
	})
	return booking, nil
}

func (s *service) CreateAssigned(ctx context.Context, actor Actor, input CreateAssignedInput, policy types.PlatformPolicy) (*models.Booking, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if !input.AgreedPrice.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "agreed price must be positive")
	}
	if err := validateShare(input.ProviderShare, input.AgreedPrice); err != nil {
		return nil, err
	}
	provider, err := s.assignableProvider(ctx, input.ProviderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDebtLimit(ctx, provider.UserID, policy); err != nil {
		return nil, err
	}

	booking, err := s.buildBooking(ctx, input.CreateInput)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking.Status = enums.BookingStatusAssigned
	booking.AgreedPrice = &input.AgreedPrice
	booking.ProviderShare = &input.ProviderShare
	booking.DealConfirmedAt = &now
	booking.DealConfirmedBy = &actor.ID
	booking.AssignedProviderID = &provider.UserID
	booking.AssignedBy = &actor.ID
	booking.AssignedRole = actor.Role
	booking.AssignedAt = &now
	if note := strings.TrimSpace(input.InternalNote); note != "" {
		booking.InternalNote = &note
	}

	if err := s.persistNewBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionCreated,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          "created pre-assigned",
	})
	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionPriced,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          "agreed price set to " + input.AgreedPrice.StringFixed(2),
	})
	s.history.Record(ctx, history.Entry{
		BookingID:     booking.ID,
		Action:        enums.HistoryActionAssigned,
		PerformedBy:   actor.ID,
		PerformerRole: actor.Role,
		Note:          assignmentNote(input.AgreedPrice, input.ProviderShare),
	})
	return booking, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.loadBooking(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Booking, error) {
	bookings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing bookings")
	}
	return bookings, nil
}

func (s *service) History(ctx context.Context, id uuid.UUID) ([]models.BookingHistory, error) {
	if _, err := s.loadBooking(ctx, id); err != nil {
		return nil, err
	}
	return s.history.List(ctx, id)
}

// buildBooking validates intake fields and prices the request off the rate
// table. It does not persist.
func (s *service) buildBooking(ctx context.Context, input CreateInput) (*models.Booking, error) {
	if input.ServiceID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "service id is required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerPhone) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "customer name and phone are required")
	}
	if strings.TrimSpace(input.City) == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "city is required")
	}
	if input.Hours <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "hours must be positive")
	}
	if input.ScheduledAt.IsZero() {
		return nil, apperrors.New(apperrors.CodeValidation, "scheduled time is required")
	}
	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid payment method %q", method))
	}

	careService, err := s.repo.FindCareService(ctx, input.ServiceID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading care service")
	}
	if careService == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown service")
	}
	if !careService.Active {
		return nil, apperrors.New(apperrors.CodeValidation, "service is not bookable")
	}

	subtotal := careService.HourlyRate.Mul(decimal.NewFromInt(int64(input.Hours)))

	return &models.Booking{
		ServiceID:     input.ServiceID,
		CustomerID:    input.CustomerID,
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		City:          strings.TrimSpace(input.City),
		AddressText:   strings.TrimSpace(input.AddressText),
		ClientLat:     input.ClientLat,
		ClientLng:     input.ClientLng,
		Hours:         input.Hours,
		TimeSlot:      strings.TrimSpace(input.TimeSlot),
		ScheduledAt:   input.ScheduledAt.UTC(),
		Status:        enums.BookingStatusNew,
		PaymentMethod: method,
		PaymentStatus: enums.PaymentStatusUnpaid,
		Subtotal:      subtotal,
	}, nil
}

// persistNewBooking writes the booking and its initial outbox row in one
// transaction so intake and the delivery contract never diverge.
func (s *service) persistNewBooking(ctx context.Context, booking *models.Booking) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, err := repo.NextBookingNumber(ctx)
		if err != nil {
			return fmt.Errorf("allocating booking number: %w", err)
		}
		booking.BookingNumber = number

		if err := repo.Create(ctx, booking); err != nil {
			return fmt.Errorf("creating booking: %w", err)
		}

		payload, err := outbox.BuildPayload(booking)
		if err != nil {
			return fmt.Errorf("building outbox payload: %w", err)
		}
		message := &models.OutboxMessage{
			BookingID:   booking.ID,
			Destination: s.destination,
			Payload:     payload,
			Status:      enums.OutboxStatusPending,
		}
		if err := s.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
			return fmt.Errorf("creating outbox row: %w", err)
		}
		return nil
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "bookings_booking_number_key") {
			return apperrors.Wrap(apperrors.CodeConflict, err, "booking number already allocated")
		}
		return apperrors.Wrap(apperrors.CodeInternal, err, "persisting booking")
	}
	return nil
}

func (s *service) loadBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "booking id is required")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading booking")
	}
	if booking == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "booking not found")
	}
	return booking, nil
}

func (s *service) saveBooking(ctx context.Context, booking *models.Booking) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Save(ctx, booking)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "saving booking")
	}
	return nil
}

func (s *service) assignableProvider(ctx context.Context, providerID uuid.UUID) (*models.ProviderProfile, error) {
	if providerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "provider id is required")
	}
	provider, err := s.providersRepo.FindByID(ctx, providerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading provider")
	}
	if provider == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown provider")
	}
	if provider.Status != enums.ProviderStatusApproved {
		return nil, apperrors.New(apperrors.CodeConflict, "provider is not approved")
	}
	return provider, nil
}

// checkDebtLimit is a point-in-time read; races between concurrent
// assignments are tolerated.
func (s *service) checkDebtLimit(ctx context.Context, providerID uuid.UUID, policy types.PlatformPolicy) error {
	if !policy.DebtLimitEnabled() {
		return nil
	}
	balance, err := s.walletRepo.SumByProvider(ctx, providerID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "reading provider balance")
	}
	if balance.IsNegative() && balance.Abs().GreaterThanOrEqual(policy.DebtLimit) {
		return apperrors.New(apperrors.CodeConflict, "provider debt limit reached").
			WithDetails(map[string]string{"balance": balance.StringFixed(2)})
	}
	return nil
}

func requireStaff(actor Actor) error {
	if !actor.Role.IsStaff() {
		return apperrors.New(apperrors.CodeForbidden, "staff role required")
	}
	return nil
}

func validateShare(share, agreed decimal.Decimal) error {
	if share.IsNegative() {
		return apperrors.New(apperrors.CodeValidation, "provider share must not be negative")
	}
	if share.GreaterThan(agreed) {
		return apperrors.New(apperrors.CodeValidation, "provider share must not exceed agreed price")
	}
	return nil
}

func assignmentNote(agreed, share decimal.Decimal) string {
	return fmt.Sprintf("agreed price %s, provider share %s", agreed.StringFixed(2), share.StringFixed(2))
}
