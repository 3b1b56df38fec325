package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/daleelcare/daleelcare-backend/pkg/db/types"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// ProviderProfile is the directory record the matcher ranks. The profile
// itself is owned by the directory boundary; this service only reads it.
type ProviderProfile struct {
	UserID           uuid.UUID              `gorm:"column:user_id;type:uuid;primaryKey"`
	FullName         string                 `gorm:"column:full_name;not null"`
	Phone            string                 `gorm:"column:phone;not null"`
	City             string                 `gorm:"column:city;not null"`
	RoleType         enums.ProviderRoleType `gorm:"column:role_type;type:provider_role_enum;not null"`
	Status           enums.ProviderStatus   `gorm:"column:status;type:provider_status_enum;not null;default:'pending'"`
	ProfileCompleted bool                   `gorm:"column:profile_completed;not null;default:false"`
	AvailableNow     bool                   `gorm:"column:available_now;not null;default:false"`
	Lat              *float64               `gorm:"column:lat"`
	Lng              *float64               `gorm:"column:lng"`
	RadiusKM         float64                `gorm:"column:radius_km;not null;default:0"`
	ExperienceYears  int                    `gorm:"column:experience_years;not null;default:0"`
	Specialties      dbtypes.StringArray    `gorm:"column:specialties;type:text[]"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// HasCoordinates reports whether the provider shared a geolocation.
func (p *ProviderProfile) HasCoordinates() bool {
	return p.Lat != nil && p.Lng != nil
}
