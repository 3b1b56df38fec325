package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
	apperrors "github.com/daleelcare/daleelcare-backend/pkg/errors"
)

// Service defines operations over the provider commission ledger. Amounts are
// signed: negative rows are commission owed to the platform, positive rows are
// money paid back in. The balance is never stored, only derived.
type Service interface {
	RecordEntry(ctx context.Context, input RecordEntryInput) (*models.WalletEntry, error)
	RecordSettlement(ctx context.Context, input SettlementInput) (*models.WalletEntry, error)
	Balance(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error)
	Statement(ctx context.Context, providerID uuid.UUID) (*StatementResult, error)
}

type service struct {
	repo Repository
}

// RecordEntryInput captures the immutable data a ledger entry requires.
type RecordEntryInput struct {
	ProviderID uuid.UUID
	Amount     decimal.Decimal
	Reason     enums.WalletReason
	BookingID  *uuid.UUID
	Note       string
}

// SettlementInput records a payment the provider made against their debt.
type SettlementInput struct {
	ProviderID uuid.UUID
	Amount     decimal.Decimal
	Note       string
}

// StatementResult pairs the full entry list with the derived balance.
type StatementResult struct {
	Entries []models.WalletEntry
	Balance decimal.Decimal
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordEntry(ctx context.Context, input RecordEntryInput) (*models.WalletEntry, error) {
	if input.ProviderID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "provider id is required")
	}
	if !input.Reason.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid wallet reason %q", input.Reason))
	}
	if input.Amount.IsZero() {
		return nil, apperrors.New(apperrors.CodeValidation, "wallet entry amount must be non-zero")
	}

	entry := &models.WalletEntry{
		ProviderID: input.ProviderID,
		Amount:     input.Amount,
		Reason:     input.Reason,
		BookingID:  input.BookingID,
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		entry.Note = &note
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "recording wallet entry")
	}
	return entry, nil
}

func (s *service) RecordSettlement(ctx context.Context, input SettlementInput) (*models.WalletEntry, error) {
	if !input.Amount.IsPositive() {
		return nil, apperrors.New(apperrors.CodeValidation, "settlement amount must be positive")
	}
	return s.RecordEntry(ctx, RecordEntryInput{
		ProviderID: input.ProviderID,
		Amount:     input.Amount,
		Reason:     enums.WalletReasonSettlement,
		Note:       input.Note,
	})
}

func (s *service) Balance(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error) {
	if providerID == uuid.Nil {
		return decimal.Zero, apperrors.New(apperrors.CodeValidation, "provider id is required")
	}
	total, err := s.repo.SumByProvider(ctx, providerID)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.CodeInternal, err, "summing wallet entries")
	}
	return total, nil
}

func (s *service) Statement(ctx context.Context, providerID uuid.UUID) (*StatementResult, error) {
	if providerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "provider id is required")
	}

	entries, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing wallet entries")
	}

	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.Amount)
	}

	return &StatementResult{Entries: entries, Balance: balance}, nil
}
