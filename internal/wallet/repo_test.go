package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	walletEntries := `
CREATE TABLE IF NOT EXISTS wallet_entries (
  id TEXT PRIMARY KEY,
  provider_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reason TEXT NOT NULL,
  booking_id TEXT,
  note TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(`DROP TABLE IF EXISTS wallet_entries`).Error)
	require.NoError(t, db.Exec(walletEntries).Error)

	return db
}

func TestRepository_CreateAndListByProvider(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	providerID := uuid.New()
	otherProvider := uuid.New()
	bookingID := uuid.New()

	first := &models.WalletEntry{
		ProviderID: providerID,
		Amount:     decimal.RequireFromString("-12.50"),
		Reason:     enums.WalletReasonPlatformFee,
		BookingID:  &bookingID,
	}
	require.NoError(t, repo.Create(ctx, first))

	note := "cliq transfer"
	second := &models.WalletEntry{
		ProviderID: providerID,
		Amount:     decimal.RequireFromString("20.00"),
		Reason:     enums.WalletReasonSettlement,
		Note:       &note,
	}
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Create(ctx, &models.WalletEntry{
		ProviderID: otherProvider,
		Amount:     decimal.RequireFromString("-99.00"),
		Reason:     enums.WalletReasonPlatformFee,
	}))

	entries, err := repo.ListByProvider(ctx, providerID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, first.ID, entries[0].ID)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("-12.50")))
	assert.Equal(t, enums.WalletReasonPlatformFee, entries[0].Reason)
	require.NotNil(t, entries[0].BookingID)
	assert.Equal(t, bookingID, *entries[0].BookingID)

	assert.Equal(t, second.ID, entries[1].ID)
	require.NotNil(t, entries[1].Note)
	assert.Equal(t, note, *entries[1].Note)
}

func TestRepository_SumByProvider(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	providerID := uuid.New()

	for _, raw := range []string{"-12.50", "-7.25", "15.00"} {
		require.NoError(t, repo.Create(ctx, &models.WalletEntry{
			ProviderID: providerID,
			Amount:     decimal.RequireFromString(raw),
			Reason:     enums.WalletReasonAdjustment,
		}))
	}

	total, err := repo.SumByProvider(ctx, providerID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("-4.75")), "got %s", total)
}

func TestRepository_SumByProviderEmptyLedger(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)

	total, err := repo.SumByProvider(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestRepository_WithTxSharesTransaction(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	providerID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.WithTx(tx).Create(ctx, &models.WalletEntry{
			ProviderID: providerID,
			Amount:     decimal.RequireFromString("5.00"),
			Reason:     enums.WalletReasonSettlement,
		})
	})
	require.NoError(t, err)

	entries, err := repo.ListByProvider(ctx, providerID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
