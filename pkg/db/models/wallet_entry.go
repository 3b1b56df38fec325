package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// WalletEntry is one immutable signed-amount row in a provider's ledger.
// Negative amounts are commission owed to the platform, positive amounts are
// settlement payments. The balance is always derived from the sum of rows.
type WalletEntry struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProviderID uuid.UUID          `gorm:"column:provider_id;type:uuid;not null;index"`
	Amount     decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason     enums.WalletReason `gorm:"column:reason;type:wallet_reason_enum;not null"`
	BookingID  *uuid.UUID         `gorm:"column:booking_id;type:uuid"`
	Note       *string            `gorm:"column:note"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (e *WalletEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
