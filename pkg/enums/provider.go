package enums

import "fmt"

// ProviderStatus maps to the provider_status_enum enum in Postgres.
type ProviderStatus string

const (
	ProviderStatusPending   ProviderStatus = "pending"
	ProviderStatusApproved  ProviderStatus = "approved"
	ProviderStatusSuspended ProviderStatus = "suspended"
)

var validProviderStatuses = []ProviderStatus{
	ProviderStatusPending,
	ProviderStatusApproved,
	ProviderStatusSuspended,
}

// IsValid reports whether the value matches the canonical provider status enum.
func (s ProviderStatus) IsValid() bool {
	for _, candidate := range validProviderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProviderStatus converts raw input into ProviderStatus.
func ParseProviderStatus(value string) (ProviderStatus, error) {
	for _, candidate := range validProviderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid provider status %q", value)
}

// ProviderRoleType maps to the provider_role_enum enum in Postgres.
type ProviderRoleType string

const (
	ProviderRoleDoctor          ProviderRoleType = "doctor"
	ProviderRoleNurse           ProviderRoleType = "nurse"
	ProviderRoleCaregiver       ProviderRoleType = "caregiver"
	ProviderRolePhysiotherapist ProviderRoleType = "physiotherapist"
)

var validProviderRoleTypes = []ProviderRoleType{
	ProviderRoleDoctor,
	ProviderRoleNurse,
	ProviderRoleCaregiver,
	ProviderRolePhysiotherapist,
}

// IsValid reports whether the value matches the canonical provider role enum.
func (r ProviderRoleType) IsValid() bool {
	for _, candidate := range validProviderRoleTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseProviderRoleType converts raw input into ProviderRoleType.
func ParseProviderRoleType(value string) (ProviderRoleType, error) {
	for _, candidate := range validProviderRoleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid provider role %q", value)
}
