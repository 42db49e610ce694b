package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order from checkout to completion.
type OrderStatus string

const (
	OrderStatusPending             OrderStatus = "pending"
	OrderStatusWaitingConfirmation OrderStatus = "waiting_confirmation"
	OrderStatusConfirmed           OrderStatus = "confirmed"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCancelled           OrderStatus = "cancelled"

	// Exception statuses are informational markers for shipments in trouble.
	// They never gate business logic.
	OrderStatusDelayed     OrderStatus = "delayed"
	OrderStatusCustomsHold OrderStatus = "customs_hold"
	OrderStatusDamaged     OrderStatus = "damaged"
	OrderStatusLost        OrderStatus = "lost"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusWaitingConfirmation,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusDelayed,
	OrderStatusCustomsHold,
	OrderStatusDamaged,
	OrderStatusLost,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status rejects further transitions.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusCompleted || o == OrderStatusCancelled
}

// IsException reports whether the status belongs to the shipment exception branch.
func (o OrderStatus) IsException() bool {
	switch o {
	case OrderStatusDelayed, OrderStatusCustomsHold, OrderStatusDamaged, OrderStatusLost:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
