package history

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
)

// Repository manages persistence for booking history entries. Append-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.BookingHistory) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.BookingHistory, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a history repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.BookingHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.BookingHistory, error) {
	var entries []models.BookingHistory
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
