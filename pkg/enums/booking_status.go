package enums

import "fmt"

// BookingStatus tracks the lifecycle of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusCompleted,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// CanTransitionTo enforces the forward-only lifecycle:
// pending → confirmed → {cancelled, completed}. A status never regresses.
func (b BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch b {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled || next == BookingStatusCompleted
	default:
		return false
	}
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
