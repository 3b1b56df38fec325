package enums

import "fmt"

// ActorRole identifies who performed an action against a booking.
type ActorRole string

const (
	ActorRoleAdmin    ActorRole = "admin"
	ActorRoleCS       ActorRole = "cs"
	ActorRoleProvider ActorRole = "provider"
	ActorRoleCustomer ActorRole = "customer"
	ActorRoleSystem   ActorRole = "system"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleCS,
	ActorRoleProvider,
	ActorRoleCustomer,
	ActorRoleSystem,
}

// IsValid reports whether the value matches the canonical actor role enum.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role may drive the assignment workflow.
func (r ActorRole) IsStaff() bool {
	return r == ActorRoleAdmin || r == ActorRoleCS
}

// ParseActorRole converts raw input into ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
