package reconcile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	"github.com/lucasmarchena/partsmarket-backend/pkg/outbox"
)

// Event is one authoritative entry from the outbox feed, normalized for the
// reconciliation projection.
type Event struct {
	Sequence      int64
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	OccurredAt    time.Time
	Actor         *outbox.ActorRef
	Data          json.RawMessage
}

// orderPayload is the superset of fields the projection reads from order
// aggregate events. Unknown fields are ignored.
type orderPayload struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	CustomerID     uuid.UUID           `json:"customer_id"`
	PartnerID      uuid.UUID           `json:"partner_id"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method"`
	TotalCents     int                 `json:"total_cents"`
	From           enums.OrderStatus   `json:"from"`
	To             enums.OrderStatus   `json:"to"`
	TrackingNumber string              `json:"tracking_number"`
	RefundedCents  int                 `json:"refunded_cents"`
}

// paymentPayload covers the payment aggregate events that move an order's
// payment status in the projection.
type paymentPayload struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	AmountCents int       `json:"amount_cents"`
}

// DecodeEvent converts a stored outbox row into a feed event.
func DecodeEvent(row models.OutboxEvent) (*Event, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode outbox payload %s: %w", row.ID, err)
	}
	return &Event{
		Sequence:      row.Sequence,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		OccurredAt:    envelope.OccurredAt,
		Actor:         envelope.Actor,
		Data:          envelope.Data,
	}, nil
}
