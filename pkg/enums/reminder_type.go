package enums

import "fmt"

// ReminderType identifies which reminder a record tracks.
type ReminderType string

const (
	ReminderTypeUpcomingAppointment ReminderType = "upcoming_appointment"
)

var validReminderTypes = []ReminderType{
	ReminderTypeUpcomingAppointment,
}

// String implements fmt.Stringer.
func (r ReminderType) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r ReminderType) IsValid() bool {
	for _, candidate := range validReminderTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReminderType converts raw input into a ReminderType.
func ParseReminderType(value string) (ReminderType, error) {
	for _, candidate := range validReminderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reminder type %q", value)
}
