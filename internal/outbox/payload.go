package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
)

// PayloadSource tags every payload so the sink can tell which system wrote it.
const PayloadSource = "daleelcare-backend"

// Payload is the delivery contract with the external sheet. Additions are
// backward compatible; never remove a field.
type Payload struct {
	BookingID         uuid.UUID `json:"booking_id"`
	BookingNumber     int64     `json:"booking_number"`
	ServiceID         uuid.UUID `json:"service_id"`
	City              string    `json:"city"`
	ScheduledAt       string    `json:"scheduled_at"`
	Status            string    `json:"status"`
	CustomerName      string    `json:"customer_name"`
	CustomerPhone     string    `json:"customer_phone"`
	ClientAddressText string    `json:"client_address_text"`
	Hours             int       `json:"hours"`
	TimeSlot          string    `json:"time_slot"`
	CreatedAt         string    `json:"created_at"`
	Source            string    `json:"source"`
}

// BuildPayload snapshots a booking into the wire contract.
func BuildPayload(booking *models.Booking) (json.RawMessage, error) {
	payload := Payload{
		BookingID:         booking.ID,
		BookingNumber:     booking.BookingNumber,
		ServiceID:         booking.ServiceID,
		City:              booking.City,
		ScheduledAt:       booking.ScheduledAt.UTC().Format(time.RFC3339),
		Status:            string(booking.Status),
		CustomerName:      booking.CustomerName,
		CustomerPhone:     booking.CustomerPhone,
		ClientAddressText: booking.AddressText,
		Hours:             booking.Hours,
		TimeSlot:          booking.TimeSlot,
		CreatedAt:         booking.CreatedAt.UTC().Format(time.RFC3339),
		Source:            PayloadSource,
	}
	return json.Marshal(payload)
}
