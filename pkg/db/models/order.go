package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	"github.com/lucasmarchena/partsmarket-backend/pkg/types"
)

// Order is the aggregate root for a customer purchase of auto parts.
// Version guards every mutation: writers compare-and-swap on it so two
// concurrent updates to the same order cannot both win.
type Order struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string                 `gorm:"column:order_number;type:text;not null;uniqueIndex:orders_order_number_key"`
	CustomerID      uuid.UUID              `gorm:"column:customer_id;type:uuid;not null;index"`
	PartnerID       *uuid.UUID             `gorm:"column:partner_id;type:uuid;index"`
	Status          enums.OrderStatus      `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus    `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	PaymentMethod   enums.PaymentMethod    `gorm:"column:payment_method;type:text;not null"`
	SubtotalCents   int                    `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int                    `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents      int                    `gorm:"column:total_cents;not null"`
	ShippingAddress *types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	TrackingNumber  *string                `gorm:"column:tracking_number;type:text"`
	Notes           *string                `gorm:"column:notes"`
	CancelReason    *string                `gorm:"column:cancel_reason"`
	Version         int                    `gorm:"column:version;not null;default:0"`
	Items           []OrderItem            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []PaymentRecord        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConfirmedAt     *time.Time             `gorm:"column:confirmed_at"`
	ShippedAt       *time.Time             `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time             `gorm:"column:delivered_at"`
	CompletedAt     *time.Time             `gorm:"column:completed_at"`
	CancelledAt     *time.Time             `gorm:"column:cancelled_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
