package providers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// Repository reads provider directory records. Profiles are owned by the
// directory boundary; this service never mutates them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, userID uuid.UUID) (*models.ProviderProfile, error)
	ListApproved(ctx context.Context) ([]models.ProviderProfile, error)
	ListAssignable(ctx context.Context) ([]models.ProviderProfile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a provider directory repository bound to the database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, userID uuid.UUID) (*models.ProviderProfile, error) {
	var profile models.ProviderProfile
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// ListApproved returns every approved profile, completed or not. The distance
// ranking considers the whole approved pool; only the city fallbacks require
// a completed profile.
func (r *repository) ListApproved(ctx context.Context) ([]models.ProviderProfile, error) {
	var profiles []models.ProviderProfile
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.ProviderStatusApproved).
		Order("full_name ASC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) ListAssignable(ctx context.Context) ([]models.ProviderProfile, error) {
	var profiles []models.ProviderProfile
	if err := r.db.WithContext(ctx).
		Where("status = ? AND profile_completed = ?", enums.ProviderStatusApproved, true).
		Order("full_name ASC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
