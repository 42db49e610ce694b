package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
)

// Repository manages persistence for wallet balances and their ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EnsureBalance(ctx context.Context, userID uuid.UUID) (*models.WalletBalance, error)
	AddBalance(ctx context.Context, userID uuid.UUID, amountCents int) error
	DebitBalance(ctx context.Context, userID uuid.UUID, amountCents int) (bool, error)
	CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error
	FindTransaction(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error)
	FindCompletedRefundForOrder(ctx context.Context, orderID uuid.UUID) (*models.WalletTransaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error)
	SumCompleted(ctx context.Context, userID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// EnsureBalance lazily creates the zero-balance row on first touch.
func (r *repository) EnsureBalance(ctx context.Context, userID uuid.UUID) (*models.WalletBalance, error) {
	seed := &models.WalletBalance{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(seed).Error; err != nil {
		return nil, err
	}

	var balance models.WalletBalance
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) AddBalance(ctx context.Context, userID uuid.UUID, amountCents int) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletBalance{}).
		Where("user_id = ?", userID).
		Update("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error
}

// DebitBalance subtracts in a single conditional UPDATE. Zero affected rows
// means the balance was too low and nothing changed.
func (r *repository) DebitBalance(ctx context.Context, userID uuid.UUID, amountCents int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.WalletBalance{}).
		Where("user_id = ? AND balance_cents >= ?", userID, amountCents).
		Update("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindTransaction(ctx context.Context, id uuid.UUID) (*models.WalletTransaction, error) {
	var entry models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindCompletedRefundForOrder(ctx context.Context, orderID uuid.UUID) (*models.WalletTransaction, error) {
	var entry models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("order_id = ? AND type = ? AND status = ?",
			orderID, enums.WalletTransactionTypeRefund, enums.WalletTransactionStatusCompleted).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) UpdateTransaction(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("user_id = ?", userID)

	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, "", err
		}
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.WalletTransaction
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&entries).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, nextCursor, nil
}

// SumCompleted replays the ledger: completed entries signed by type.
func (r *repository) SumCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	var entries []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.WalletTransactionStatusCompleted).
		Find(&entries).Error; err != nil {
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		switch entry.Type {
		case enums.WalletTransactionTypeDeposit, enums.WalletTransactionTypeRefund, enums.WalletTransactionTypeEarning:
			total += entry.AmountCents
		case enums.WalletTransactionTypeWithdrawal:
			total -= entry.AmountCents
		}
	}
	return total, nil
}
