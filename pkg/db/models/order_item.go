package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem captures the snapshot of each part line within an order.
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	PartID         *uuid.UUID `gorm:"column:part_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	SKU            *string    `gorm:"column:sku"`
	Manufacturer   *string    `gorm:"column:manufacturer"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null"`
	Qty            int        `gorm:"column:qty;not null"`
	TotalCents     int        `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
