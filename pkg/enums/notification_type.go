package enums

import "fmt"

// NotificationType categorizes stored notifications.
type NotificationType string

const (
	NotificationTypeBookingConfirmed NotificationType = "booking_confirmed"
	NotificationTypeBookingUpdated   NotificationType = "booking_updated"
	NotificationTypeBookingCancelled NotificationType = "booking_cancelled"
	NotificationTypeBookingReminder  NotificationType = "booking_reminder"
	NotificationTypePaymentRefunded  NotificationType = "payment_refunded"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeBookingConfirmed,
	NotificationTypeBookingUpdated,
	NotificationTypeBookingCancelled,
	NotificationTypeBookingReminder,
	NotificationTypePaymentRefunded,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is known.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
