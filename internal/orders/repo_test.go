package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  partner_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  payment_method TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  shipping_address TEXT,
  tracking_number TEXT,
  notes TEXT,
  cancel_reason TEXT,
  version INTEGER NOT NULL DEFAULT 0,
  confirmed_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  part_id TEXT,
  name TEXT NOT NULL,
  sku TEXT,
  manufacturer TEXT,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	paymentRecords := `
CREATE TABLE IF NOT EXISTS payment_records (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  amount_cents INTEGER NOT NULL,
  gateway_reference TEXT,
  failure_reason TEXT,
  verified_by TEXT,
  verified_at DATETIME,
  rejected_by TEXT,
  rejected_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(paymentRecords).Error)
	return db
}

func newTestOrder(customerID uuid.UUID, number string) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		CustomerID:    customerID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		PaymentMethod: enums.PaymentMethodCard,
		SubtotalCents: 5000,
		TotalCents:    5500,
		ShippingCents: 500,
	}
}

func TestRepoCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	order := newTestOrder(customerID, "PM-20260101120000-00001")
	created, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	items := []models.OrderItem{
		{ID: uuid.New(), OrderID: created.ID, Name: "Brake pad set", UnitPriceCents: 2500, Qty: 2, TotalCents: 5000},
	}
	require.NoError(t, repo.CreateOrderItems(ctx, items))

	found, err := repo.FindByOrderNumber(ctx, "PM-20260101120000-00001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Len(t, found.Items, 1)
	assert.Equal(t, "Brake pad set", found.Items[0].Name)

	_, err = repo.FindByOrderNumber(ctx, "PM-19990101000000-00000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoUniqueOrderNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := newTestOrder(uuid.New(), "PM-20260101120000-00002")
	_, err := repo.CreateOrder(ctx, first)
	require.NoError(t, err)

	dup := newTestOrder(uuid.New(), "PM-20260101120000-00002")
	_, err = repo.CreateOrder(ctx, dup)
	require.Error(t, err)
}

func TestRepoUpdateGuarded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(uuid.New(), "PM-20260101120000-00003")
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	ok, err := repo.UpdateGuarded(ctx, order.ID, 0, map[string]any{"status": enums.OrderStatusConfirmed})
	require.NoError(t, err)
	assert.True(t, ok)

	// stale version loses the race
	ok, err = repo.UpdateGuarded(ctx, order.ID, 0, map[string]any{"status": enums.OrderStatusProcessing})
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
	assert.Equal(t, 1, reloaded.Version)
}

func TestRepoListForCustomerFiltersAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	for i := 0; i < 3; i++ {
		order := newTestOrder(customerID, fmt.Sprintf("PM-20260101120000-1000%d", i))
		if i == 2 {
			order.Status = enums.OrderStatusConfirmed
		}
		_, err := repo.CreateOrder(ctx, order)
		require.NoError(t, err)
	}
	// another customer's order must stay invisible
	_, err := repo.CreateOrder(ctx, newTestOrder(uuid.New(), "PM-20260101120000-00009"))
	require.NoError(t, err)

	list, err := repo.ListForCustomer(ctx, customerID, pagination.Params{Limit: 10}, Filters{})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 3)
	assert.Empty(t, list.NextCursor)

	confirmed := enums.OrderStatusConfirmed
	list, err = repo.ListForCustomer(ctx, customerID, pagination.Params{Limit: 10}, Filters{Status: &confirmed})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 1)

	page, err := repo.ListForCustomer(ctx, customerID, pagination.Params{Limit: 2}, Filters{})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.NotEmpty(t, page.NextCursor)

	rest, err := repo.ListForCustomer(ctx, customerID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, Filters{})
	require.NoError(t, err)
	assert.Len(t, rest.Orders, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestRepoDeleteOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder(uuid.New(), "PM-20260101120000-00004")
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteOrder(ctx, order.ID))
	_, err = repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
