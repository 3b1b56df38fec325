package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/daleelcare/daleelcare-backend/pkg/db/models"
	"github.com/daleelcare/daleelcare-backend/pkg/enums"
)

// Repository manages persistence for outbox rows. Rows are created at booking
// intake and mutated only through the dispatcher.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.OutboxMessage) error
	DueBatch(ctx context.Context, now time.Time, maxAttempts, limit int) ([]models.OutboxMessage, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.OutboxMessage, error)
	Update(ctx context.Context, message *models.OutboxMessage) error
	ListFailed(ctx context.Context, limit int) ([]models.OutboxMessage, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an outbox repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, message *models.OutboxMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repository) DueBatch(ctx context.Context, now time.Time, maxAttempts, limit int) ([]models.OutboxMessage, error) {
	var rows []models.OutboxMessage
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.OutboxStatus{enums.OutboxStatusPending, enums.OutboxStatusFailed}).
		Where("attempts < ?", maxAttempts).
		Where("next_retry_at <= ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.OutboxMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.OutboxMessage
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, message *models.OutboxMessage) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *repository) ListFailed(ctx context.Context, limit int) ([]models.OutboxMessage, error) {
	var rows []models.OutboxMessage
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.OutboxStatusFailed).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
