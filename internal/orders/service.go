package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/lucasmarchena/partsmarket-backend/pkg/db"
	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/outbox"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
)

const orderNumberConstraint = "orders_order_number_key"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// WalletRefunder credits a cancelled order's total to the assigned
// partner's wallet inside the caller's transaction.
type WalletRefunder interface {
	Refund(ctx context.Context, tx *gorm.DB, userID, orderID uuid.UUID, amountCents int, reference string) error
}

// LogisticsRecorder mirrors order state into the public tracking tables.
type LogisticsRecorder interface {
	Sync(ctx context.Context, tx *gorm.DB, order *models.Order, description string) error
}

// Notifier records an in-app notification inside the caller's transaction.
type Notifier interface {
	Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.NotificationKind, title, message string, orderID *uuid.UUID) error
}

// Actor identifies the caller for read-side access checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// Service defines order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string, actor Actor) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListForPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params, filters Filters) (*List, error)
	ListAll(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	Confirm(ctx context.Context, input StatusInput) error
	UpdateStatus(ctx context.Context, input StatusInput) error
	AssignPartner(ctx context.Context, input AssignInput) error
	Ship(ctx context.Context, input ShipInput) error
	MarkDelivered(ctx context.Context, input StatusInput) error
	Complete(ctx context.Context, input StatusInput) error
	Cancel(ctx context.Context, input CancelInput) error
	Delete(ctx context.Context, input DeleteInput) error
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	wallet    WalletRefunder
	logistics LogisticsRecorder
	notifier  Notifier
	now       func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, wallet WalletRefunder, logistics LogisticsRecorder, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet refunder required")
	}
	if logistics == nil {
		return nil, fmt.Errorf("logistics recorder required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outboxSvc,
		wallet:    wallet,
		logistics: logistics,
		notifier:  notifier,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	subtotal := 0
	for i, item := range input.Items {
		if item.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d missing name", i))
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d quantity must be positive", i))
		}
		if item.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d price must not be negative", i))
		}
		subtotal += item.UnitPriceCents * item.Qty
	}
	if input.ShippingCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping fee must not be negative")
	}
	if input.ShippingAddress != nil {
		input.ShippingAddress.Normalize()
		if err := input.ShippingAddress.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
		}
	}

	order := &models.Order{
		OrderNumber:     NewOrderNumber(s.now()),
		CustomerID:      input.CustomerID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		PaymentMethod:   input.PaymentMethod,
		SubtotalCents:   subtotal,
		ShippingCents:   input.ShippingCents,
		TotalCents:      subtotal + input.ShippingCents,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			if dbpkg.IsUniqueViolation(err, orderNumberConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "order number collision")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.OrderItem{
				OrderID:        order.ID,
				PartID:         item.PartID,
				Name:           item.Name,
				SKU:            item.SKU,
				Manufacturer:   item.Manufacturer,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
				TotalCents:     item.UnitPriceCents * item.Qty,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		order.Items = items

		if err := s.logistics.Sync(ctx, tx, order, "order placed"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record logistics")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.CustomerID, input.ActorRole),
			Data: CreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				CustomerID:    order.CustomerID,
				PaymentMethod: order.PaymentMethod,
				TotalCents:    order.TotalCents,
				ItemCount:     len(items),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetByID(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := assertReadAccess(order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetByOrderNumber(ctx context.Context, orderNumber string, actor Actor) (*models.Order, error) {
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := assertReadAccess(order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

func assertReadAccess(order *models.Order, actor Actor) error {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleCustomer:
		if order.CustomerID == actor.UserID {
			return nil
		}
	case enums.ActorRolePartner:
		if order.PartnerID != nil && *order.PartnerID == actor.UserID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	list, err := s.repo.ListForCustomer(ctx, customerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return list, nil
}

func (s *service) ListForPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params, filters Filters) (*List, error) {
	if partnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "partner identity missing")
	}
	list, err := s.repo.ListForPartner(ctx, partnerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list partner orders")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	list, err := s.repo.ListAll(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// Confirm moves an order into the confirmed state. Payment verification
// lands here through the payments service; admins may also confirm directly.
func (s *service) Confirm(ctx context.Context, input StatusInput) error {
	input.Status = enums.OrderStatusConfirmed
	return s.transition(ctx, input)
}

func (s *service) UpdateStatus(ctx context.Context, input StatusInput) error {
	return s.transition(ctx, input)
}

func (s *service) MarkDelivered(ctx context.Context, input StatusInput) error {
	input.Status = enums.OrderStatusDelivered
	return s.transition(ctx, input)
}

func (s *service) Complete(ctx context.Context, input StatusInput) error {
	input.Status = enums.OrderStatusCompleted
	return s.transition(ctx, input)
}

func (s *service) transition(ctx context.Context, input StatusInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == input.Status {
			return nil
		}
		if err := assertTransition(order.Status, input.Status); err != nil {
			return err
		}

		updates := map[string]any{"status": input.Status}
		now := s.now()
		switch input.Status {
		case enums.OrderStatusConfirmed:
			updates["confirmed_at"] = now
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		case enums.OrderStatusCompleted:
			updates["completed_at"] = now
		}

		if err := s.applyGuarded(ctx, repo, order, updates); err != nil {
			return err
		}

		from := order.Status
		order.Status = input.Status
		if err := s.logistics.Sync(ctx, tx, order, statusDescription(input.Status)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record logistics")
		}

		if input.Status == enums.OrderStatusConfirmed && order.PartnerID != nil {
			if err := s.notifier.Record(ctx, tx, *order.PartnerID, enums.NotificationOrderConfirmed,
				"Order confirmed",
				fmt.Sprintf("Order %s has been confirmed and is ready for fulfilment.", order.OrderNumber),
				&order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventForStatus(input.Status),
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: StatusMovedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				From:        from,
				To:          input.Status,
			},
		})
	})
}

func (s *service) AssignPartner(ctx context.Context, input AssignInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.PartnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "partner id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot assign a "+string(order.Status)+" order")
		}
		// Re-assigning the current partner is a no-op; a different partner
		// overwrites the assignment.
		if order.PartnerID != nil && *order.PartnerID == input.PartnerID {
			return nil
		}

		updates := map[string]any{"partner_id": input.PartnerID}
		if err := s.applyGuarded(ctx, repo, order, updates); err != nil {
			return err
		}
		order.PartnerID = &input.PartnerID

		if err := s.notifier.Record(ctx, tx, input.PartnerID, enums.NotificationOrderAssigned,
			"New order assigned",
			fmt.Sprintf("Order %s is ready for fulfilment.", order.OrderNumber),
			&order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAssigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: AssignedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				PartnerID:   input.PartnerID,
			},
		})
	})
}

func (s *service) Ship(ctx context.Context, input ShipInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.TrackingNumber == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := assertTransition(order.Status, enums.OrderStatusShipped); err != nil {
			return err
		}

		now := s.now()
		updates := map[string]any{
			"status":          enums.OrderStatusShipped,
			"tracking_number": input.TrackingNumber,
			"shipped_at":      now,
		}
		if err := s.applyGuarded(ctx, repo, order, updates); err != nil {
			return err
		}
		order.Status = enums.OrderStatusShipped
		order.TrackingNumber = &input.TrackingNumber

		if err := s.logistics.Sync(ctx, tx, order, "shipment picked up"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record logistics")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderShipped,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: ShippedEvent{
				OrderID:        order.ID,
				OrderNumber:    order.OrderNumber,
				TrackingNumber: input.TrackingNumber,
				Carrier:        input.Carrier,
			},
		})
	})
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
		}
		if order.Status == enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed orders cannot be cancelled")
		}

		refunded := 0
		var refundedTo *uuid.UUID
		updates := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": s.now(),
		}
		if input.Reason != nil {
			updates["cancel_reason"] = *input.Reason
		}

		// A paid order that already reached a partner refunds the partner's
		// wallet; a paid order nobody fulfils yet moves no money.
		if order.PaymentStatus == enums.PaymentStatusPaid && order.PartnerID != nil {
			if err := s.wallet.Refund(ctx, tx, *order.PartnerID, order.ID, order.TotalCents, order.OrderNumber); err != nil {
				return err
			}
			refunded = order.TotalCents
			refundedTo = order.PartnerID
			updates["payment_status"] = enums.PaymentStatusRefunded
		}

		if err := s.applyGuarded(ctx, repo, order, updates); err != nil {
			return err
		}
		order.Status = enums.OrderStatusCancelled

		if err := s.logistics.Sync(ctx, tx, order, "order cancelled"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record logistics")
		}

		if err := s.notifier.Record(ctx, tx, order.CustomerID, enums.NotificationOrderCancelled,
			"Order cancelled",
			fmt.Sprintf("Order %s has been cancelled.", order.OrderNumber),
			&order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: CancelledEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				CustomerID:    order.CustomerID,
				Reason:        input.Reason,
				RefundedCents: refunded,
				RefundedTo:    refundedTo,
			},
		})
	})
}

func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.ActorRoleAdmin.String() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete orders")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		// Emit before deleting so the feed carries the audited actor.
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: DeletedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				DeletedBy:   input.ActorUserID,
			},
		}); err != nil {
			return err
		}

		if err := repo.DeleteOrder(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func (s *service) applyGuarded(ctx context.Context, repo Repository, order *models.Order, updates map[string]any) error {
	ok, err := repo.UpdateGuarded(ctx, order.ID, order.Version, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
	}
	order.Version++
	return nil
}

func loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func eventForStatus(status enums.OrderStatus) enums.OutboxEventType {
	switch status {
	case enums.OrderStatusConfirmed:
		return enums.EventOrderConfirmed
	case enums.OrderStatusShipped:
		return enums.EventOrderShipped
	case enums.OrderStatusDelivered:
		return enums.EventOrderDelivered
	case enums.OrderStatusCompleted:
		return enums.EventOrderCompleted
	default:
		return enums.EventOrderStatusMoved
	}
}

func statusDescription(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusConfirmed:
		return "order confirmed"
	case enums.OrderStatusProcessing:
		return "partner preparing shipment"
	case enums.OrderStatusShipped:
		return "shipment picked up"
	case enums.OrderStatusDelivered:
		return "shipment delivered"
	case enums.OrderStatusCompleted:
		return "order completed"
	case enums.OrderStatusDelayed:
		return "shipment delayed"
	case enums.OrderStatusCustomsHold:
		return "shipment held at customs"
	case enums.OrderStatusDamaged:
		return "shipment reported damaged"
	case enums.OrderStatusLost:
		return "shipment reported lost"
	default:
		return "order updated"
	}
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}
