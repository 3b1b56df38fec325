package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// BookingHistory records an immutable audit entry for a booking action.
// Rows are only ever appended; nothing reads them to drive logic.
type BookingHistory struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BookingID     uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	Action        enums.HistoryAction `gorm:"column:action;type:history_action_enum;not null"`
	PerformedBy   uuid.UUID           `gorm:"column:performed_by;type:uuid;not null"`
	PerformerRole enums.ActorRole     `gorm:"column:performer_role;type:text;not null"`
	Note          *string             `gorm:"column:note"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (h *BookingHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
