package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	"github.com/lucasmarchena/partsmarket-backend/pkg/types"
)

// Filters describe the inputs supported by every order list.
type Filters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
	Query         string
}

// ItemInput is one part line submitted at order creation.
type ItemInput struct {
	PartID         *uuid.UUID
	Name           string
	SKU            *string
	Manufacturer   *string
	UnitPriceCents int
	Qty            int
}

// CreateInput carries everything needed to open an order.
type CreateInput struct {
	CustomerID      uuid.UUID
	PaymentMethod   enums.PaymentMethod
	Items           []ItemInput
	ShippingCents   int
	ShippingAddress *types.ShippingAddress
	Notes           *string
	ActorRole       string
}

// Summary exposes the aggregated fields returned in order lists.
type Summary struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CreatedAt     time.Time           `json:"created_at"`
	TotalCents    int                 `json:"total_cents"`
	TotalItems    int                 `json:"total_items"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// List wraps the paginated orders plus the next page cursor.
type List struct {
	Orders     []Summary `json:"orders"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// StatusInput moves an order along the lifecycle graph.
type StatusInput struct {
	OrderID     uuid.UUID
	Status      enums.OrderStatus
	ActorUserID uuid.UUID
	ActorRole   string
}

// AssignInput hands an order to a fulfilment partner.
type AssignInput struct {
	OrderID     uuid.UUID
	PartnerID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
}

// ShipInput records the shipment and tracking number.
type ShipInput struct {
	OrderID        uuid.UUID
	TrackingNumber string
	Carrier        *string
	ActorUserID    uuid.UUID
	ActorRole      string
}

// CancelInput cancels an order with an optional reason.
type CancelInput struct {
	OrderID     uuid.UUID
	Reason      *string
	ActorUserID uuid.UUID
	ActorRole   string
}

// DeleteInput removes an order entirely. Admin only; the actor is audited
// through the emitted event.
type DeleteInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
}
