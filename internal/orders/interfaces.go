package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListForPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListAll(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	// UpdateGuarded applies updates only when the stored version still matches.
	// It returns false when another writer won the race.
	UpdateGuarded(ctx context.Context, orderID uuid.UUID, version int, updates map[string]any) (bool, error)
	FindUnpaidPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
}
