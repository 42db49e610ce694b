package orders

import (
	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// CreatedEvent is emitted when an order is opened.
type CreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalCents    int                 `json:"total_cents"`
	ItemCount     int                 `json:"item_count"`
}

// StatusMovedEvent is emitted on every lifecycle transition.
type StatusMovedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
}

// AssignedEvent is emitted when a fulfilment partner takes an order.
type AssignedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	PartnerID   uuid.UUID `json:"partner_id"`
}

// ShippedEvent is emitted when an order leaves the warehouse.
type ShippedEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	TrackingNumber string    `json:"tracking_number"`
	Carrier        *string   `json:"carrier,omitempty"`
}

// CancelledEvent is emitted when an order is cancelled.
type CancelledEvent struct {
	OrderID       uuid.UUID  `json:"order_id"`
	OrderNumber   string     `json:"order_number"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	Reason        *string    `json:"reason,omitempty"`
	RefundedCents int        `json:"refunded_cents"`
	RefundedTo    *uuid.UUID `json:"refunded_to,omitempty"`
}

// DeletedEvent records the audited removal of an order.
type DeletedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	DeletedBy   uuid.UUID `json:"deleted_by"`
}
