package enums

import "fmt"

// OutboxEventType enumerates the domain events emitted through the outbox.
type OutboxEventType string

const (
	EventOrderCreated      OutboxEventType = "order.created"
	EventOrderConfirmed    OutboxEventType = "order.confirmed"
	EventOrderStatusMoved  OutboxEventType = "order.status_moved"
	EventOrderAssigned     OutboxEventType = "order.assigned"
	EventOrderShipped      OutboxEventType = "order.shipped"
	EventOrderDelivered    OutboxEventType = "order.delivered"
	EventOrderCompleted    OutboxEventType = "order.completed"
	EventOrderCancelled    OutboxEventType = "order.cancelled"
	EventOrderDeleted      OutboxEventType = "order.deleted"
	EventPaymentPending    OutboxEventType = "payment.pending"
	EventPaymentVerified   OutboxEventType = "payment.verified"
	EventPaymentRejected   OutboxEventType = "payment.rejected"
	EventPaymentFailed     OutboxEventType = "payment.failed"
	EventWalletCredited    OutboxEventType = "wallet.credited"
	EventWalletDebited     OutboxEventType = "wallet.debited"
	EventWalletTxConfirmed OutboxEventType = "wallet.transaction_confirmed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderConfirmed,
	EventOrderStatusMoved,
	EventOrderAssigned,
	EventOrderShipped,
	EventOrderDelivered,
	EventOrderCompleted,
	EventOrderCancelled,
	EventOrderDeleted,
	EventPaymentPending,
	EventPaymentVerified,
	EventPaymentRejected,
	EventPaymentFailed,
	EventWalletCredited,
	EventWalletDebited,
	EventWalletTxConfirmed,
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregatePayment OutboxAggregateType = "payment"
	AggregateWallet  OutboxAggregateType = "wallet"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregatePayment,
	AggregateWallet,
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}
