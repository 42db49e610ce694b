package logistics

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
)

// Repository manages persistence for logistics records and their timelines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.LogisticsRecord) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.LogisticsRecord, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.LogisticsRecord, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AppendEvent(ctx context.Context, event *models.LogisticsEvent) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a logistics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.LogisticsRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.LogisticsRecord, error) {
	var record models.LogisticsRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.LogisticsRecord, error) {
	var record models.LogisticsRecord
	if err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at ASC")
		}).
		Where("tracking_number = ?", trackingNumber).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.LogisticsRecord{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) AppendEvent(ctx context.Context, event *models.LogisticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
