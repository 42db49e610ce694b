package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	balances := `
CREATE TABLE IF NOT EXISTS wallet_balances (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	transactions := `
CREATE TABLE IF NOT EXISTS wallet_transactions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_id TEXT,
  type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  amount_cents INTEGER NOT NULL,
  reference TEXT,
  note TEXT,
  confirmed_by TEXT,
  confirmed_at DATETIME,
  rejected_by TEXT,
  rejected_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(balances).Error)
	require.NoError(t, db.Exec(transactions).Error)
	return db
}

func TestRepoEnsureBalanceIsIdempotent(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.EnsureBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.BalanceCents)

	require.NoError(t, repo.AddBalance(ctx, userID, 1000))

	second, err := repo.EnsureBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1000, second.BalanceCents)
}

func TestRepoDebitBalanceConditional(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.EnsureBalance(ctx, userID)
	require.NoError(t, err)
	require.NoError(t, repo.AddBalance(ctx, userID, 500))

	ok, err := repo.DebitBalance(ctx, userID, 300)
	require.NoError(t, err)
	assert.True(t, ok)

	// remaining 200, overdraft must not touch the row
	ok, err = repo.DebitBalance(ctx, userID, 300)
	require.NoError(t, err)
	assert.False(t, ok)

	balance, err := repo.EnsureBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 200, balance.BalanceCents)
}

func TestRepoFindCompletedRefundForOrder(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()

	pending := &models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		OrderID:     &orderID,
		Type:        enums.WalletTransactionTypeRefund,
		Status:      enums.WalletTransactionStatusPending,
		AmountCents: 1500,
	}
	require.NoError(t, repo.CreateTransaction(ctx, pending))

	_, err := repo.FindCompletedRefundForOrder(ctx, orderID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	completed := &models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		OrderID:     &orderID,
		Type:        enums.WalletTransactionTypeRefund,
		Status:      enums.WalletTransactionStatusCompleted,
		AmountCents: 1500,
	}
	require.NoError(t, repo.CreateTransaction(ctx, completed))

	found, err := repo.FindCompletedRefundForOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, completed.ID, found.ID)
}

func TestRepoListTransactionsPaginates(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &models.WalletTransaction{
			ID:          uuid.New(),
			UserID:      userID,
			Type:        enums.WalletTransactionTypeDeposit,
			Status:      enums.WalletTransactionStatusCompleted,
			AmountCents: (i + 1) * 100,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateTransaction(ctx, entry))
	}

	page, cursor, err := repo.ListTransactions(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	require.NotEmpty(t, cursor)
	// newest first
	assert.Equal(t, 300, page[0].AmountCents)

	rest, next, err := repo.ListTransactions(ctx, userID, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
	assert.Empty(t, next)
	assert.Equal(t, 100, rest[0].AmountCents)
}

func TestRepoSumCompletedSignsByType(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	entries := []struct {
		txType enums.WalletTransactionType
		status enums.WalletTransactionStatus
		amount int
	}{
		{enums.WalletTransactionTypeDeposit, enums.WalletTransactionStatusCompleted, 5000},
		{enums.WalletTransactionTypeEarning, enums.WalletTransactionStatusCompleted, 1200},
		{enums.WalletTransactionTypeRefund, enums.WalletTransactionStatusCompleted, 300},
		{enums.WalletTransactionTypeWithdrawal, enums.WalletTransactionStatusCompleted, 2000},
		{enums.WalletTransactionTypeDeposit, enums.WalletTransactionStatusPending, 9999},
		{enums.WalletTransactionTypeWithdrawal, enums.WalletTransactionStatusRejected, 9999},
	}
	for _, e := range entries {
		require.NoError(t, repo.CreateTransaction(ctx, &models.WalletTransaction{
			ID:          uuid.New(),
			UserID:      userID,
			Type:        e.txType,
			Status:      e.status,
			AmountCents: e.amount,
		}))
	}

	total, err := repo.SumCompleted(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5000+1200+300-2000, total)
}
