package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// OutboxMessage is one durable row pending delivery to an external sink.
// Created at booking intake and mutated only by the dispatcher.
type OutboxMessage struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	BookingID   uuid.UUID          `gorm:"column:booking_id;type:uuid;not null;index"`
	Destination string             `gorm:"column:destination;not null"`
	Payload     json.RawMessage    `gorm:"column:payload;type:jsonb;not null"`
	Status      enums.OutboxStatus `gorm:"column:status;type:outbox_status_enum;not null;default:'pending'"`
	Attempts    int                `gorm:"column:attempts;not null;default:0"`
	LastError   *string            `gorm:"column:last_error"`
	NextRetryAt time.Time          `gorm:"column:next_retry_at;not null;index"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *OutboxMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.NextRetryAt.IsZero() {
		m.NextRetryAt = time.Now().UTC()
	}
	return nil
}
