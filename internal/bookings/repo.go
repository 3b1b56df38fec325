package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// ListFilter narrows booking listings.
type ListFilter struct {
	Status     *enums.BookingStatus
	ProviderID *uuid.UUID
	City       string
	Limit      int
	Offset     int
}

// Repository manages persistence for bookings and the rate table they price
// against.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	Save(ctx context.Context, booking *models.Booking) error
	List(ctx context.Context, filter ListFilter) ([]models.Booking, error)
	NextBookingNumber(ctx context.Context) (int64, error)
	FindCareService(ctx context.Context, id uuid.UUID) (*models.CareService, error)
	ListLateCheckins(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bookings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Save(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProviderID != nil {
		query = query.Where("assigned_provider_id = ?", *filter.ProviderID)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var bookings []models.Booking
	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) NextBookingNumber(ctx context.Context) (int64, error) {
	var next int64
	if err := r.db.WithContext(ctx).
		Raw("SELECT nextval('booking_number_seq')").
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repository) ListLateCheckins(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.BookingStatus{enums.BookingStatusAssigned, enums.BookingStatusAccepted}).
		Where("scheduled_at <= ?", cutoff).
		Order("scheduled_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) FindCareService(ctx context.Context, id uuid.UUID) (*models.CareService, error) {
	var svc models.CareService
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&svc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &svc, nil
}
