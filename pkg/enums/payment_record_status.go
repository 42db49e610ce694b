package enums

import "fmt"

// PaymentRecordStatus tracks the lifecycle of a single payment attempt.
type PaymentRecordStatus string

const (
	PaymentRecordStatusPending  PaymentRecordStatus = "pending"
	PaymentRecordStatusVerified PaymentRecordStatus = "verified"
	PaymentRecordStatusRejected PaymentRecordStatus = "rejected"
	PaymentRecordStatusFailed   PaymentRecordStatus = "failed"
)

var validPaymentRecordStatuses = []PaymentRecordStatus{
	PaymentRecordStatusPending,
	PaymentRecordStatusVerified,
	PaymentRecordStatusRejected,
	PaymentRecordStatusFailed,
}

// String implements fmt.Stringer.
func (p PaymentRecordStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentRecordStatus.
func (p PaymentRecordStatus) IsValid() bool {
	for _, candidate := range validPaymentRecordStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentRecordStatus converts raw input into a PaymentRecordStatus.
func ParsePaymentRecordStatus(value string) (PaymentRecordStatus, error) {
	for _, candidate := range validPaymentRecordStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment record status %q", value)
}
