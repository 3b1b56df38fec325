package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// Booking represents one customer service request moving through the
// negotiation and assignment workflow.
type Booking struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookingNumber int64     `gorm:"column:booking_number;not null;uniqueIndex"`

	ServiceID     uuid.UUID  `gorm:"column:service_id;type:uuid;not null"`
	CustomerID    uuid.UUID  `gorm:"column:customer_id;type:uuid;not null"`
	CustomerName  string     `gorm:"column:customer_name;not null"`
	CustomerPhone string     `gorm:"column:customer_phone;not null"`
	City          string     `gorm:"column:city;not null"`
	AddressText   string     `gorm:"column:address_text"`
	ClientLat     *float64   `gorm:"column:client_lat"`
	ClientLng     *float64   `gorm:"column:client_lng"`
	Hours         int        `gorm:"column:hours;not null"`
	TimeSlot      string     `gorm:"column:time_slot"`
	ScheduledAt   time.Time  `gorm:"column:scheduled_at;not null"`

	Status        enums.BookingStatus `gorm:"column:status;type:booking_status_enum;not null;default:'NEW'"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method_enum;not null;default:'cash'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:payment_status_enum;not null;default:'unpaid'"`

	Subtotal      decimal.Decimal  `gorm:"column:subtotal;type:numeric(12,2);not null"`
	AgreedPrice   *decimal.Decimal `gorm:"column:agreed_price;type:numeric(12,2)"`
	ProviderShare *decimal.Decimal `gorm:"column:provider_share;type:numeric(12,2)"`

	DealConfirmedAt *time.Time `gorm:"column:deal_confirmed_at"`
	DealConfirmedBy *uuid.UUID `gorm:"column:deal_confirmed_by;type:uuid"`
	InternalNote    *string    `gorm:"column:internal_note"`

	AssignedProviderID *uuid.UUID      `gorm:"column:assigned_provider_id;type:uuid"`
	AssignedBy         *uuid.UUID      `gorm:"column:assigned_by;type:uuid"`
	AssignedRole       enums.ActorRole `gorm:"column:assigned_role;type:text"`
	AssignedAt         *time.Time      `gorm:"column:assigned_at"`
	AcceptedAt         *time.Time      `gorm:"column:accepted_at"`

	CompletedAt  *time.Time `gorm:"column:completed_at"`
	CompletedBy  *uuid.UUID `gorm:"column:completed_by;type:uuid"`
	CloseOutNote *string    `gorm:"column:close_out_note"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// HasCoordinates reports whether the booking carries a usable client location.
func (b *Booking) HasCoordinates() bool {
	return b.ClientLat != nil && b.ClientLng != nil
}

// Phase1Complete reports whether the client agreement phase is done.
func (b *Booking) Phase1Complete() bool {
	return b.DealConfirmedAt != nil && b.AgreedPrice != nil
}
