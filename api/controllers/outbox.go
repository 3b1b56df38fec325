package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/api/responses"
	"github.com/daleelcare/daleelcare-backend/api/validators"
	"github.com/daleelcare/daleelcare-backend/internal/outbox"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	pkgerrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

type outboxDispatchRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// OutboxDispatch runs one delivery pass. With no body (or an empty ids list)
// it dispatches everything due; with explicit ids it resends those rows,
// resetting their attempt counters.
func OutboxDispatch(dispatcher outbox.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload outboxDispatchRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var (
			result *outbox.Result
			err    error
		)
		if len(payload.IDs) > 0 {
			result, err = dispatcher.Resend(r.Context(), payload.IDs)
		} else {
			result, err = dispatcher.Dispatch(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OutboxListFailed returns rows that exhausted their delivery attempts.
func OutboxListFailed(repo outbox.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "outbox repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := repo.ListFailed(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing failed outbox rows"))
			return
		}

		out := make([]outboxMessageResponse, 0, len(rows))
		for i := range rows {
			out = append(out, outboxMessageResponseFromModel(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type outboxMessageResponse struct {
	ID          uuid.UUID          `json:"id"`
	BookingID   uuid.UUID          `json:"booking_id"`
	Destination string             `json:"destination"`
	Status      enums.OutboxStatus `json:"status"`
	Attempts    int                `json:"attempts"`
	LastError   *string            `json:"last_error,omitempty"`
	NextRetryAt time.Time          `json:"next_retry_at"`
	CreatedAt   time.Time          `json:"created_at"`
}

func outboxMessageResponseFromModel(m *models.OutboxMessage) outboxMessageResponse {
	return outboxMessageResponse{
		ID:          m.ID,
		BookingID:   m.BookingID,
		Destination: m.Destination,
		Status:      m.Status,
		Attempts:    m.Attempts,
		LastError:   m.LastError,
		NextRetryAt: m.NextRetryAt,
		CreatedAt:   m.CreatedAt,
	}
}
