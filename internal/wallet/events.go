package wallet

import (
	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// CreditedEvent is emitted when a wallet balance increases.
type CreditedEvent struct {
	UserID        uuid.UUID                   `json:"user_id"`
	OrderID       *uuid.UUID                  `json:"order_id,omitempty"`
	TransactionID uuid.UUID                   `json:"transaction_id"`
	Type          enums.WalletTransactionType `json:"type"`
	AmountCents   int                         `json:"amount_cents"`
}

// DebitedEvent is emitted when a wallet balance decreases.
type DebitedEvent struct {
	UserID        uuid.UUID                   `json:"user_id"`
	OrderID       *uuid.UUID                  `json:"order_id,omitempty"`
	TransactionID uuid.UUID                   `json:"transaction_id"`
	Type          enums.WalletTransactionType `json:"type"`
	AmountCents   int                         `json:"amount_cents"`
}

// TransactionReviewedEvent is emitted when an admin settles a pending entry.
type TransactionReviewedEvent struct {
	UserID        uuid.UUID                     `json:"user_id"`
	TransactionID uuid.UUID                     `json:"transaction_id"`
	Type          enums.WalletTransactionType   `json:"type"`
	Status        enums.WalletTransactionStatus `json:"status"`
	AmountCents   int                           `json:"amount_cents"`
	ReviewedBy    uuid.UUID                     `json:"reviewed_by"`
}
