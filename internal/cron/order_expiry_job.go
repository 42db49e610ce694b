package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/internal/orders"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
	"github.com/lucasmarchena/partsmarket-backend/pkg/outbox"
)

const (
	paymentWindowDays    = 7
	orderExpiryBatchSize = 100
)

var expiredReason = "payment window expired"

// OrderExpiryJobParams configure the stale order expiry job.
type OrderExpiryJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Orders     orders.Repository
	Outbox     outboxEmitter
	Notifier   notificationRecorder
	WindowDays int
	BatchSize  int
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type notificationRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.NotificationKind, title, message string, orderID *uuid.UUID) error
}

// NewOrderExpiryJob builds the job that cancels orders whose payment window
// ran out before any payment landed.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	window := params.WindowDays
	if window <= 0 {
		window = paymentWindowDays
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = orderExpiryBatchSize
	}
	return &orderExpiryJob{
		logg:      params.Logger,
		db:        params.DB,
		orders:    params.Orders,
		outbox:    params.Outbox,
		notifier:  params.Notifier,
		window:    window,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg      *logger.Logger
	db        txRunner
	orders    orders.Repository
	outbox    outboxEmitter
	notifier  notificationRecorder
	window    int
	batchSize int
	now       func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.window) * 24 * time.Hour)
	stale, err := j.orders.FindUnpaidPendingBefore(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query stale orders: %w", err)
	}

	var errs []error
	expired := 0
	for _, order := range stale {
		if err := j.expireOrder(ctx, order.ID); err != nil {
			errs = append(errs, fmt.Errorf("expire order %s: %w", order.OrderNumber, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":      cutoff,
		"window_days": j.window,
		"candidates":  len(stale),
		"expired":     expired,
	})
	j.logg.Info(logCtx, "order expiry loop complete")
	return multierr.Combine(errs...)
}

func (j *orderExpiryJob) expireOrder(ctx context.Context, orderID uuid.UUID) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.orders.WithTx(tx)
		current, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		// Re-check under the transaction; a payment may have landed since
		// the batch query ran.
		if current.Status != enums.OrderStatusPending || current.PaymentStatus != enums.PaymentStatusUnpaid {
			return nil
		}

		now := j.now().UTC()
		updated, err := repo.UpdateGuarded(ctx, current.ID, current.Version, map[string]any{
			"status":        enums.OrderStatusCancelled,
			"cancel_reason": expiredReason,
			"cancelled_at":  now,
		})
		if err != nil {
			return err
		}
		if !updated {
			return nil
		}

		if err := j.notifier.Record(ctx, tx, current.CustomerID, enums.NotificationOrderCancelled,
			"Order cancelled",
			fmt.Sprintf("Order %s was cancelled because no payment arrived in time.", current.OrderNumber),
			&current.ID); err != nil {
			return err
		}

		return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Data: orders.CancelledEvent{
				OrderID:     current.ID,
				OrderNumber: current.OrderNumber,
				CustomerID:  current.CustomerID,
				Reason:      &expiredReason,
			},
		})
	})
}
