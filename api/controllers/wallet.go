package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daleelcare/daleelcare-backend/api/responses"
	"github.com/daleelcare/daleelcare-backend/api/validators"
	"github.com/daleelcare/daleelcare-backend/internal/wallet"
	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	"github.com/daleelcare/daleelcare-backend/pkg/logger"
)

// WalletBalance returns the derived balance for a provider.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := validators.URLParamUUID(r, "providerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.Balance(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, walletBalanceResponse{
			ProviderID: providerID,
			Balance:    balance,
		})
	}
}

// WalletStatement returns the full ledger for a provider, oldest first.
func WalletStatement(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := validators.URLParamUUID(r, "providerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		statement, err := svc.Statement(r.Context(), providerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries := make([]walletEntryResponse, 0, len(statement.Entries))
		for i := range statement.Entries {
			entries = append(entries, walletEntryResponseFromModel(&statement.Entries[i]))
		}

		responses.WriteSuccess(w, walletStatementResponse{
			ProviderID: providerID,
			Balance:    statement.Balance,
			Entries:    entries,
		})
	}
}

type walletSettlementRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Note   string          `json:"note"`
}

// WalletRecordSettlement records a positive payment a provider made against
// accumulated commission debt.
func WalletRecordSettlement(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, err := validators.URLParamUUID(r, "providerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload walletSettlementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.RecordSettlement(r.Context(), wallet.SettlementInput{
			ProviderID: providerID,
			Amount:     payload.Amount,
			Note:       strings.TrimSpace(payload.Note),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, walletEntryResponseFromModel(entry))
	}
}

type walletBalanceResponse struct {
	ProviderID uuid.UUID       `json:"provider_id"`
	Balance    decimal.Decimal `json:"balance"`
}

type walletStatementResponse struct {
	ProviderID uuid.UUID             `json:"provider_id"`
	Balance    decimal.Decimal       `json:"balance"`
	Entries    []walletEntryResponse `json:"entries"`
}

type walletEntryResponse struct {
	ID         uuid.UUID          `json:"id"`
	ProviderID uuid.UUID          `json:"provider_id"`
	Amount     decimal.Decimal    `json:"amount"`
	Reason     enums.WalletReason `json:"reason"`
	BookingID  *uuid.UUID         `json:"booking_id,omitempty"`
	Note       *string            `json:"note,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

func walletEntryResponseFromModel(m *models.WalletEntry) walletEntryResponse {
	return walletEntryResponse{
		ID:         m.ID,
		ProviderID: m.ProviderID,
		Amount:     m.Amount,
		Reason:     m.Reason,
		BookingID:  m.BookingID,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}
