package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

type fakeRepository struct {
	entries  []models.WalletEntry
	createFn func(ctx context.Context, entry *models.WalletEntry) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.WalletEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.WalletEntry, error) {
	var out []models.WalletEntry
	for _, entry := range f.entries {
		if entry.ProviderID == providerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeRepository) SumByProvider(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, entry := range f.entries {
		if entry.ProviderID == providerID {
			total = total.Add(entry.Amount)
		}
	}
	return total, nil
}

func TestService_BalanceDerivedFromEntries(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	providerID := uuid.New()
	ctx := context.Background()

	// Two completed jobs owe commission, one settlement pays part back.
	amounts := []string{"-12.50", "-7.25", "15.00"}
	reasons := []enums.WalletReason{
		enums.WalletReasonPlatformFee,
		enums.WalletReasonPlatformFee,
		enums.WalletReasonSettlement,
	}
	for i, raw := range amounts {
		if _, err := svc.RecordEntry(ctx, RecordEntryInput{
			ProviderID: providerID,
			Amount:     decimal.RequireFromString(raw),
			Reason:     reasons[i],
		}); err != nil {
			t.Fatalf("RecordEntry(%s) error: %v", raw, err)
		}
	}

	balance, err := svc.Balance(ctx, providerID)
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	if want := decimal.RequireFromString("-4.75"); !balance.Equal(want) {
		t.Fatalf("balance = %s, want %s", balance, want)
	}

	statement, err := svc.Statement(ctx, providerID)
	if err != nil {
		t.Fatalf("Statement error: %v", err)
	}
	if len(statement.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(statement.Entries))
	}
	if !statement.Balance.Equal(balance) {
		t.Fatalf("statement balance %s disagrees with derived balance %s", statement.Balance, balance)
	}
}

func TestService_RejectsZeroAmount(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.RecordEntry(context.Background(), RecordEntryInput{
		ProviderID: uuid.New(),
		Amount:     decimal.Zero,
		Reason:     enums.WalletReasonAdjustment,
	})
	if err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestService_SettlementMustBePositive(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	ctx := context.Background()
	providerID := uuid.New()

	if _, err := svc.RecordSettlement(ctx, SettlementInput{
		ProviderID: providerID,
		Amount:     decimal.RequireFromString("-5.00"),
	}); err == nil {
		t.Fatal("expected error for negative settlement")
	}
	if _, err := svc.RecordSettlement(ctx, SettlementInput{
		ProviderID: providerID,
		Amount:     decimal.Zero,
	}); err == nil {
		t.Fatal("expected error for zero settlement")
	}

	entry, err := svc.RecordSettlement(ctx, SettlementInput{
		ProviderID: providerID,
		Amount:     decimal.RequireFromString("20.00"),
		Note:       "cliq transfer",
	})
	if err != nil {
		t.Fatalf("RecordSettlement error: %v", err)
	}
	if entry.Reason != enums.WalletReasonSettlement {
		t.Fatalf("reason = %s, want settlement", entry.Reason)
	}
	if !entry.Amount.IsPositive() {
		t.Fatalf("settlement amount should stay positive, got %s", entry.Amount)
	}
	if entry.Note == nil || *entry.Note != "cliq transfer" {
		t.Fatalf("note not carried: %+v", entry.Note)
	}
}

func TestService_RecordEntryValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.RecordEntry(ctx, RecordEntryInput{
		Amount: decimal.NewFromInt(5),
		Reason: enums.WalletReasonAdjustment,
	}); err == nil {
		t.Fatal("expected error for missing provider id")
	}
	if _, err := svc.RecordEntry(ctx, RecordEntryInput{
		ProviderID: uuid.New(),
		Amount:     decimal.NewFromInt(5),
		Reason:     enums.WalletReason("bogus"),
	}); err == nil {
		t.Fatal("expected error for invalid reason")
	}
}
