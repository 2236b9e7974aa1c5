package enums

import "fmt"

// UserRole is the coarse role carried in access tokens.
type UserRole string

const (
	UserRoleClient UserRole = "client"
	UserRoleBarber UserRole = "barber"
	UserRoleAdmin  UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRoleClient,
	UserRoleBarber,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is known.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
