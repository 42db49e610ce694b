package payments

import (
	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// PendingEvent is emitted when a payment waits for manual verification.
type PendingEvent struct {
	PaymentID   uuid.UUID           `json:"payment_id"`
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Method      enums.PaymentMethod `json:"method"`
	AmountCents int                 `json:"amount_cents"`
}

// VerifiedEvent is emitted when a payment settles, whether instantly or
// after admin review.
type VerifiedEvent struct {
	PaymentID        uuid.UUID           `json:"payment_id"`
	OrderID          uuid.UUID           `json:"order_id"`
	OrderNumber      string              `json:"order_number"`
	Method           enums.PaymentMethod `json:"method"`
	AmountCents      int                 `json:"amount_cents"`
	GatewayReference *string             `json:"gateway_reference,omitempty"`
	VerifiedBy       *uuid.UUID          `json:"verified_by,omitempty"`
}

// RejectedEvent is emitted when an admin declines a manual payment.
type RejectedEvent struct {
	PaymentID   uuid.UUID           `json:"payment_id"`
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Method      enums.PaymentMethod `json:"method"`
	AmountCents int                 `json:"amount_cents"`
	Reason      *string             `json:"reason,omitempty"`
	RejectedBy  uuid.UUID           `json:"rejected_by"`
}

// FailedEvent is emitted when the gateway declines a capture.
type FailedEvent struct {
	PaymentID   uuid.UUID           `json:"payment_id"`
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Method      enums.PaymentMethod `json:"method"`
	AmountCents int                 `json:"amount_cents"`
	Reason      string              `json:"reason"`
}
