package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// LogisticsRecord mirrors the shipping state of an order so public tracking
// lookups never touch the order tables.
type LogisticsRecord struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID         `gorm:"column:order_id;type:uuid;not null;uniqueIndex:logistics_records_order_id_key"`
	OrderNumber    string            `gorm:"column:order_number;type:text;not null"`
	TrackingNumber *string           `gorm:"column:tracking_number;type:text;index"`
	Carrier        *string           `gorm:"column:carrier;type:text"`
	Status         enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Events         []LogisticsEvent  `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *LogisticsRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// LogisticsEvent is one timeline entry shown on the public tracking page.
type LogisticsEvent struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecordID    uuid.UUID         `gorm:"column:record_id;type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Description string            `gorm:"column:description;not null"`
	OccurredAt  time.Time         `gorm:"column:occurred_at;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (e *LogisticsEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
