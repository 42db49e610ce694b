package enums

import "fmt"

// NotificationKind classifies in-app notification rows.
type NotificationKind string

const (
	NotificationOrderAssigned   NotificationKind = "order_assigned"
	NotificationOrderConfirmed  NotificationKind = "order_confirmed"
	NotificationOrderCancelled  NotificationKind = "order_cancelled"
	NotificationPaymentPending  NotificationKind = "payment_pending"
	NotificationPaymentRejected NotificationKind = "payment_rejected"
	NotificationWalletRefunded  NotificationKind = "wallet_refunded"
)

var validNotificationKinds = []NotificationKind{
	NotificationOrderAssigned,
	NotificationOrderConfirmed,
	NotificationOrderCancelled,
	NotificationPaymentPending,
	NotificationPaymentRejected,
	NotificationWalletRefunded,
}

// String implements fmt.Stringer.
func (n NotificationKind) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationKind.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw input into a NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
