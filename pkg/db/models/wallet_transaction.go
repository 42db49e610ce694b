package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// WalletTransaction is the immutable ledger entry behind every balance change.
type WalletTransaction struct {
	ID          uuid.UUID                      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID                      `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID                     `gorm:"column:order_id;type:uuid;index"`
	Type        enums.WalletTransactionType    `gorm:"column:type;type:text;not null"`
	Status      enums.WalletTransactionStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	AmountCents int                            `gorm:"column:amount_cents;not null"`
	Reference   *string                        `gorm:"column:reference;type:text"`
	Note        *string                        `gorm:"column:note"`
	ConfirmedBy *uuid.UUID                     `gorm:"column:confirmed_by;type:uuid"`
	ConfirmedAt *time.Time                     `gorm:"column:confirmed_at"`
	RejectedBy  *uuid.UUID                     `gorm:"column:rejected_by;type:uuid"`
	RejectedAt  *time.Time                     `gorm:"column:rejected_at"`
	CreatedAt   time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}
