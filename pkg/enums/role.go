package enums

import (
	"fmt"
	"strings"
)

// Role is the position a user registers with. Roles are mutually exclusive.
type Role string

const (
	RoleTrader Role = "trader"
	RoleBuyer  Role = "buyer"
)

var validRoles = []Role{
	RoleTrader,
	RoleBuyer,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Title returns the capitalized role name used in audit messages.
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
