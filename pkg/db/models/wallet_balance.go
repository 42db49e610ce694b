package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletBalance holds the current spendable balance per user.
// Debits run as a single conditional UPDATE so the balance can never go
// negative under concurrency.
type WalletBalance struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:wallet_balances_user_id_key"`
	BalanceCents int       `gorm:"column:balance_cents;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
