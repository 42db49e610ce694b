package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// PaymentRecord tracks a single payment attempt against an order.
type PaymentRecord struct {
	ID               uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	Method           enums.PaymentMethod       `gorm:"column:method;type:text;not null"`
	Status           enums.PaymentRecordStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AmountCents      int                       `gorm:"column:amount_cents;not null"`
	GatewayReference *string                   `gorm:"column:gateway_reference;type:text"`
	FailureReason    *string                   `gorm:"column:failure_reason"`
	VerifiedBy       *uuid.UUID                `gorm:"column:verified_by;type:uuid"`
	VerifiedAt       *time.Time                `gorm:"column:verified_at"`
	RejectedBy       *uuid.UUID                `gorm:"column:rejected_by;type:uuid"`
	RejectedAt       *time.Time                `gorm:"column:rejected_at"`
	CreatedAt        time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
