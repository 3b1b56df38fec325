package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daleelcare/daleelcare-backend/api/middleware"
	"github.com/daleelcare/daleelcare-backend/api/responses"
	"github.com/daleelcare/daleelcare-backend/api/validators"
	"github.com/daleelcare/daleelcare-backend/internal/bookings"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	pkgerrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
	"github.com/daleelcare/daleelcare-backend/pkg/types"
)

func actorFromContext(r *http.Request) (bookings.Actor, error) {
	rawID := middleware.ActorIDFromContext(r.Context())
	if rawID == "" {
		return bookings.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return bookings.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}

	role, err := enums.ParseActorRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return bookings.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}

	return bookings.Actor{ID: id, Role: role}, nil
}

type bookingCreateRequest struct {
	ServiceID     uuid.UUID `json:"service_id" validate:"required"`
	CustomerID    uuid.UUID `json:"customer_id" validate:"required"`
	CustomerName  string    `json:"customer_name" validate:"required"`
	CustomerPhone string    `json:"customer_phone" validate:"required"`
	City          string    `json:"city" validate:"required"`
	AddressText   string    `json:"address_text"`
	ClientLat     *float64  `json:"client_lat"`
	ClientLng     *float64  `json:"client_lng"`
	Hours         int       `json:"hours" validate:"required,gt=0"`
	TimeSlot      string    `json:"time_slot"`
	ScheduledAt   time.Time `json:"scheduled_at" validate:"required"`
	PaymentMethod string    `json:"payment_method" validate:"required"`
}

func (r bookingCreateRequest) toInput() (bookings.CreateInput, error) {
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(r.PaymentMethod))
	if err != nil {
		return bookings.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	return bookings.CreateInput{
		ServiceID:     r.ServiceID,
		CustomerID:    r.CustomerID,
		CustomerName:  strings.TrimSpace(r.CustomerName),
		CustomerPhone: strings.TrimSpace(r.CustomerPhone),
		City:          strings.TrimSpace(r.City),
		AddressText:   strings.TrimSpace(r.AddressText),
		ClientLat:     r.ClientLat,
		ClientLng:     r.ClientLng,
		Hours:         r.Hours,
		TimeSlot:      strings.TrimSpace(r.TimeSlot),
		ScheduledAt:   r.ScheduledAt,
		PaymentMethod: method,
	}, nil
}

// BookingCreate handles customer intake of a new booking request.
func BookingCreate(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, bookingResponseFromModel(created))
	}
}

type bookingCreateAssignedRequest struct {
	bookingCreateRequest
	AgreedPrice   decimal.Decimal `json:"agreed_price" validate:"required"`
	ProviderShare decimal.Decimal `json:"provider_share"`
	ProviderID    uuid.UUID       `json:"provider_id" validate:"required"`
	InternalNote  string          `json:"internal_note"`
}

// BookingCreateAssigned handles the staff shortcut that creates a booking
// already priced and assigned in one call.
func BookingCreateAssigned(svc bookings.Service, logg *logger.Logger, policy types.PlatformPolicy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingCreateAssignedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		base, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateAssigned(r.Context(), actor, bookings.CreateAssignedInput{
			CreateInput:   base,
			AgreedPrice:   payload.AgreedPrice,
			ProviderShare: payload.ProviderShare,
			ProviderID:    payload.ProviderID,
			InternalNote:  strings.TrimSpace(payload.InternalNote),
		}, policy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, bookingResponseFromModel(created))
	}
}

// BookingGet returns a single booking by id.
func BookingGet(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

// BookingList returns bookings filtered by status, provider, or city.
func BookingList(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter bookings.ListFilter

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseBookingStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("provider_id")); raw != "" {
			providerID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid provider_id filter"))
				return
			}
			filter.ProviderID = &providerID
		}

		filter.City = strings.TrimSpace(r.URL.Query().Get("city"))

		limit, err := validators.ParseQueryInt(r, "limit", 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Limit = limit
		filter.Offset = offset

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]bookingResponse, 0, len(list))
		for i := range list {
			out = append(out, bookingResponseFromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// BookingHistoryList returns the append-only audit trail for a booking.
func BookingHistoryList(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.History(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]historyEntryResponse, 0, len(entries))
		for i := range entries {
			out = append(out, historyEntryResponseFromModel(&entries[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// BookingConfirmDeal marks the verbal client agreement as confirmed.
func BookingConfirmDeal(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.ConfirmDeal(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

type bookingPricingRequest struct {
	AgreedPrice  decimal.Decimal `json:"agreed_price" validate:"required"`
	InternalNote string          `json:"internal_note"`
}

// BookingSavePricing stores the negotiated price on a confirmed deal.
func BookingSavePricing(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingPricingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.SavePricing(r.Context(), actor, id, bookings.PricingInput{
			AgreedPrice:  payload.AgreedPrice,
			InternalNote: strings.TrimSpace(payload.InternalNote),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

// BookingCandidates returns ranked provider candidate lists for assignment.
func BookingCandidates(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lists, err := svc.Candidates(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, candidateListsResponseFromModel(lists))
	}
}

type bookingShareRequest struct {
	ProviderShare decimal.Decimal `json:"provider_share"`
}

// BookingSaveProviderShare stores the provider payout for a priced booking.
func BookingSaveProviderShare(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingShareRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.SaveProviderShare(r.Context(), actor, id, payload.ProviderShare)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

type bookingAssignRequest struct {
	ProviderID uuid.UUID `json:"provider_id" validate:"required"`
}

// BookingAssign assigns (or reassigns) a provider to a fully priced booking.
func BookingAssign(svc bookings.Service, logg *logger.Logger, policy types.PlatformPolicy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Assign(r.Context(), actor, id, payload.ProviderID, policy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

// BookingAccept lets the assigned provider acknowledge the job.
func BookingAccept(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc.Accept, logg)
}

// BookingCheckIn marks the provider as on-site.
func BookingCheckIn(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc.CheckIn, logg)
}

func transition(
	op func(ctx context.Context, actor bookings.Actor, id uuid.UUID) (*models.Booking, error),
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := op(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

type bookingCompleteRequest struct {
	CloseOutNote string `json:"close_out_note"`
}

// BookingComplete closes out the work and settles the platform commission.
func BookingComplete(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingCompleteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Complete(r.Context(), actor, id, strings.TrimSpace(payload.CloseOutNote))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

type bookingReasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// BookingCancel terminates a booking on customer or staff request.
func BookingCancel(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return closeOut(svc.Cancel, logg)
}

// BookingReject terminates a booking the platform declined to serve.
func BookingReject(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return closeOut(svc.Reject, logg)
}

func closeOut(
	op func(ctx context.Context, actor bookings.Actor, id uuid.UUID, reason string) (*models.Booking, error),
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.URLParamUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bookingReasonRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := op(r.Context(), actor, id, strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingResponseFromModel(booking))
	}
}

type bookingResponse struct {
	ID            uuid.UUID `json:"id"`
	BookingNumber int64     `json:"booking_number"`

	ServiceID     uuid.UUID `json:"service_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	City          string    `json:"city"`
	AddressText   string    `json:"address_text"`
	ClientLat     *float64  `json:"client_lat,omitempty"`
	ClientLng     *float64  `json:"client_lng,omitempty"`
	Hours         int       `json:"hours"`
	TimeSlot      string    `json:"time_slot"`
	ScheduledAt   time.Time `json:"scheduled_at"`

	Status        enums.BookingStatus `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`

	Subtotal      decimal.Decimal  `json:"subtotal"`
	AgreedPrice   *decimal.Decimal `json:"agreed_price,omitempty"`
	ProviderShare *decimal.Decimal `json:"provider_share,omitempty"`

	DealConfirmedAt *time.Time `json:"deal_confirmed_at,omitempty"`
	InternalNote    *string    `json:"internal_note,omitempty"`

	AssignedProviderID *uuid.UUID `json:"assigned_provider_id,omitempty"`
	AssignedAt         *time.Time `json:"assigned_at,omitempty"`
	AcceptedAt         *time.Time `json:"accepted_at,omitempty"`

	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CloseOutNote *string    `json:"close_out_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func bookingResponseFromModel(m *models.Booking) bookingResponse {
	return bookingResponse{
		ID:                 m.ID,
		BookingNumber:      m.BookingNumber,
		ServiceID:          m.ServiceID,
		CustomerID:         m.CustomerID,
		CustomerName:       m.CustomerName,
		CustomerPhone:      m.CustomerPhone,
		City:               m.City,
		AddressText:        m.AddressText,
		ClientLat:          m.ClientLat,
		ClientLng:          m.ClientLng,
		Hours:              m.Hours,
		TimeSlot:           m.TimeSlot,
		ScheduledAt:        m.ScheduledAt,
		Status:             m.Status,
		PaymentMethod:      m.PaymentMethod,
		PaymentStatus:      m.PaymentStatus,
		Subtotal:           m.Subtotal,
		AgreedPrice:        m.AgreedPrice,
		ProviderShare:      m.ProviderShare,
		DealConfirmedAt:    m.DealConfirmedAt,
		InternalNote:       m.InternalNote,
		AssignedProviderID: m.AssignedProviderID,
		AssignedAt:         m.AssignedAt,
		AcceptedAt:         m.AcceptedAt,
		CompletedAt:        m.CompletedAt,
		CloseOutNote:       m.CloseOutNote,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

type historyEntryResponse struct {
	ID            uuid.UUID           `json:"id"`
	BookingID     uuid.UUID           `json:"booking_id"`
	Action        enums.HistoryAction `json:"action"`
	PerformedBy   uuid.UUID           `json:"performed_by"`
	PerformerRole enums.ActorRole     `json:"performer_role"`
	Note          *string             `json:"note,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func historyEntryResponseFromModel(m *models.BookingHistory) historyEntryResponse {
	return historyEntryResponse{
		ID:            m.ID,
		BookingID:     m.BookingID,
		Action:        m.Action,
		PerformedBy:   m.PerformedBy,
		PerformerRole: m.PerformerRole,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
	}
}
