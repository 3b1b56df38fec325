package enums

import "fmt"

// BookingStatus maps to the booking_status_enum enum in Postgres.
type BookingStatus string

const (
	BookingStatusNew        BookingStatus = "NEW"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusAssigned   BookingStatus = "ASSIGNED"
	BookingStatusAccepted   BookingStatus = "ACCEPTED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
	BookingStatusRejected   BookingStatus = "REJECTED"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusNew,
	BookingStatusConfirmed,
	BookingStatusAssigned,
	BookingStatusAccepted,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusRejected,
}

// IsValid reports whether the value matches the canonical booking status enum.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected:
		return true
	}
	return false
}

// CanComplete reports whether the booking may move to COMPLETED.
func (s BookingStatus) CanComplete() bool {
	switch s {
	case BookingStatusAssigned, BookingStatusAccepted, BookingStatusInProgress:
		return true
	}
	return false
}

// CanAssign reports whether the booking may receive a provider assignment.
// Re-assignment from ASSIGNED is allowed so staff can swap providers before
// the provider accepts.
func (s BookingStatus) CanAssign() bool {
	switch s {
	case BookingStatusNew, BookingStatusConfirmed, BookingStatusAssigned:
		return true
	}
	return false
}

// ParseBookingStatus converts raw input into BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
