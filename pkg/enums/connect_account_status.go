package enums

import "fmt"

// ConnectAccountStatus tracks processor verification of a merchant sub-account.
type ConnectAccountStatus string

const (
	ConnectAccountStatusPending  ConnectAccountStatus = "pending"
	ConnectAccountStatusActive   ConnectAccountStatus = "active"
	ConnectAccountStatusDisabled ConnectAccountStatus = "disabled"
)

var validConnectAccountStatuses = []ConnectAccountStatus{
	ConnectAccountStatusPending,
	ConnectAccountStatusActive,
	ConnectAccountStatusDisabled,
}

// String implements fmt.Stringer.
func (c ConnectAccountStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is known.
func (c ConnectAccountStatus) IsValid() bool {
	for _, candidate := range validConnectAccountStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConnectAccountStatus converts raw input into a ConnectAccountStatus.
func ParseConnectAccountStatus(value string) (ConnectAccountStatus, error) {
	for _, candidate := range validConnectAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid connect account status %q", value)
}
