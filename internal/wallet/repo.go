package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
)

// Repository manages persistence for wallet ledger entries. The table is
// append-only: there are intentionally no update or delete methods.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.WalletEntry) error
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.WalletEntry, error)
	SumByProvider(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.WalletEntry, error) {
	var entries []models.WalletEntry
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SumByProvider(ctx context.Context, providerID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.WalletEntry{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("provider_id = ?", providerID).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	if !row.Total.Valid {
		return decimal.Zero, nil
	}
	return row.Total.Decimal, nil
}
