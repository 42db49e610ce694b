package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/internal/orders"
	"github.com/lucasmarchena/partsmarket-backend/pkg/config"
	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/metrics"
	"github.com/lucasmarchena/partsmarket-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type walletDebiter interface {
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, amountCents int, reference string) (*models.WalletTransaction, error)
}

// AttemptInput starts a payment against an order. The method comes from the
// order itself; only card payments carry a token.
type AttemptInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
	CardToken   string
}

// ReviewInput settles a pending manual payment.
type ReviewInput struct {
	PaymentID uuid.UUID
	AdminID   uuid.UUID
	Reason    *string
}

// Service routes payments to their settlement path and handles admin review.
type Service interface {
	MethodsFor(role enums.ActorRole) []enums.PaymentMethod
	Attempt(ctx context.Context, input AttemptInput) (*models.PaymentRecord, error)
	Verify(ctx context.Context, input ReviewInput) (*models.PaymentRecord, error)
	Reject(ctx context.Context, input ReviewInput) (*models.PaymentRecord, error)
	RefreshCardPayment(ctx context.Context, paymentID uuid.UUID) (*models.PaymentRecord, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentRecord, error)
	ListPending(ctx context.Context, limit int) ([]models.PaymentRecord, error)
}

type service struct {
	repo      Repository
	orders    orders.Repository
	wallet    walletDebiter
	tx        txRunner
	outbox    outboxPublisher
	notifier  orders.Notifier
	gateway   Gateway
	policy    Policy
	metrics   *metrics.PaymentMetrics
	cfg       config.PaymentsConfig
	now       func() time.Time
}

// NewService wires a payment service with the provided dependencies.
func NewService(repo Repository, ordersRepo orders.Repository, wallet walletDebiter, tx txRunner, outboxSvc outboxPublisher, notifier orders.Notifier, gateway Gateway, policy Policy, paymentMetrics *metrics.PaymentMetrics, cfg config.PaymentsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet debiter required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &service{
		repo:     repo,
		orders:   ordersRepo,
		wallet:   wallet,
		tx:       tx,
		outbox:   outboxSvc,
		notifier: notifier,
		gateway:  gateway,
		policy:   policy,
		metrics:  paymentMetrics,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

func (s *service) MethodsFor(role enums.ActorRole) []enums.PaymentMethod {
	return s.policy.MethodsFor(role)
}

func (s *service) Attempt(ctx context.Context, input AttemptInput) (*models.PaymentRecord, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if input.ActorRole == enums.ActorRoleCustomer && order.CustomerID != input.ActorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot pay a "+string(order.Status)+" order")
	}

	switch order.PaymentStatus {
	case enums.PaymentStatusPaid:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already paid")
	case enums.PaymentStatusPending:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment already awaiting verification")
	}

	method := order.PaymentMethod
	if !s.policy.Allows(method, input.ActorRole) {
		s.metrics.IncAttempt(method.String(), "forbidden")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("method %q not available for role %q", method, input.ActorRole))
	}

	switch {
	case s.policy.CollectOnly(method):
		return s.attemptManual(ctx, order, input)
	case method == enums.PaymentMethodWallet:
		return s.attemptWallet(ctx, order, input)
	case method == enums.PaymentMethodCard:
		return s.attemptCard(ctx, order, input)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("method %q has no settlement path", method))
	}
}

// attemptManual parks the payment for admin review and moves the order to
// waiting_confirmation.
func (s *service) attemptManual(ctx context.Context, order *models.Order, input AttemptInput) (*models.PaymentRecord, error) {
	record := s.newRecord(order)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment record")
		}

		updates := map[string]any{"payment_status": enums.PaymentStatusPending}
		if order.Status == enums.OrderStatusPending {
			updates["status"] = enums.OrderStatusWaitingConfirmation
		}
		if err := s.applyOrder(ctx, tx, order, updates); err != nil {
			return err
		}

		if err := s.notifier.Record(ctx, tx, order.CustomerID, enums.NotificationPaymentPending,
			"Payment under review",
			fmt.Sprintf("We received your payment for order %s and are verifying it.", order.OrderNumber),
			&order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentPending,
			AggregateType: enums.AggregatePayment,
			AggregateID:   record.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole.String()},
			Data: PendingEvent{
				PaymentID:   record.ID,
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Method:      record.Method,
				AmountCents: record.AmountCents,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAttempt(record.Method.String(), "pending")
	return record, nil
}

// attemptWallet debits the customer wallet and settles in one transaction.
func (s *service) attemptWallet(ctx context.Context, order *models.Order, input AttemptInput) (*models.PaymentRecord, error) {
	record := s.newRecord(order)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.wallet.Debit(ctx, tx, order.CustomerID, &order.ID, order.TotalCents, order.OrderNumber); err != nil {
			return err
		}

		now := s.now()
		record.Status = enums.PaymentRecordStatusVerified
		record.VerifiedAt = &now
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment record")
		}

		if err := s.settleOrder(ctx, tx, order, now); err != nil {
			return err
		}

		return s.emitVerified(ctx, tx, order, record, &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole.String()})
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance) {
			s.metrics.IncAttempt(record.Method.String(), "declined")
		}
		return nil, err
	}
	s.metrics.IncAttempt(record.Method.String(), "approved")
	return record, nil
}

// attemptCard captures through the gateway before touching the database, so
// a capture is never rolled back by a local failure.
func (s *service) attemptCard(ctx context.Context, order *models.Order, input AttemptInput) (*models.PaymentRecord, error) {
	if input.CardToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "card token required")
	}

	record := s.newRecord(order)

	captureCtx := ctx
	if s.cfg.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		captureCtx, cancel = context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		defer cancel()
	}

	started := s.now()
	result, err := s.gateway.Capture(captureCtx, CaptureInput{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Amount:         AmountFromCents(order.TotalCents),
		Currency:       "USD",
		CardToken:      input.CardToken,
		IdempotencyKey: record.ID.String(),
	})
	s.metrics.ObserveGatewayDuration(record.Method.String(), s.now().Sub(started))
	if err != nil {
		s.metrics.IncAttempt(record.Method.String(), "error")
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "gateway capture failed")
	}

	if !result.Approved {
		return s.recordDecline(ctx, order, record, input, result)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		now := s.now()
		record.Status = enums.PaymentRecordStatusVerified
		record.VerifiedAt = &now
		if result.Reference != "" {
			record.GatewayReference = &result.Reference
		}
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment record")
		}

		if err := s.settleOrder(ctx, tx, order, now); err != nil {
			return err
		}

		return s.emitVerified(ctx, tx, order, record, &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole.String()})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAttempt(record.Method.String(), "approved")
	return record, nil
}

// recordDecline persists the failed attempt. The order stays pending so the
// customer can retry with another card.
func (s *service) recordDecline(ctx context.Context, order *models.Order, record *models.PaymentRecord, input AttemptInput, result *CaptureResult) (*models.PaymentRecord, error) {
	reason := result.DeclineReason
	if reason == "" {
		reason = "card declined"
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		record.Status = enums.PaymentRecordStatusFailed
		record.FailureReason = &reason
		if result.Reference != "" {
			record.GatewayReference = &result.Reference
		}
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment record")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   record.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole.String()},
			Data: FailedEvent{
				PaymentID:   record.ID,
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Method:      record.Method,
				AmountCents: record.AmountCents,
				Reason:      reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAttempt(record.Method.String(), "declined")
	return record, nil
}

// Verify settles a pending manual payment. Verifying an already-verified
// record returns it unchanged.
func (s *service) Verify(ctx context.Context, input ReviewInput) (*models.PaymentRecord, error) {
	if input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var record *models.PaymentRecord
	verified := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := s.loadRecord(ctx, repo, input.PaymentID)
		if err != nil {
			return err
		}
		record = loaded

		if record.Status == enums.PaymentRecordStatusVerified {
			return nil
		}
		if record.Status != enums.PaymentRecordStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment already settled")
		}

		order, err := s.loadOrderTx(ctx, tx, record.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot verify a payment on a "+string(order.Status)+" order")
		}

		now := s.now()
		if err := repo.Update(ctx, record.ID, map[string]any{
			"status":      enums.PaymentRecordStatusVerified,
			"verified_by": input.AdminID,
			"verified_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment record")
		}
		record.Status = enums.PaymentRecordStatusVerified
		record.VerifiedBy = &input.AdminID
		record.VerifiedAt = &now

		if err := s.settleOrder(ctx, tx, order, now); err != nil {
			return err
		}

		if err := s.notifier.Record(ctx, tx, order.CustomerID, enums.NotificationOrderConfirmed,
			"Order confirmed",
			fmt.Sprintf("Payment for order %s was verified.", order.OrderNumber),
			&order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
		}

		verified = true
		return s.emitVerified(ctx, tx, order, record, &outbox.ActorRef{UserID: input.AdminID, Role: enums.ActorRoleAdmin.String()})
	})
	if err != nil {
		return nil, err
	}
	if verified {
		s.metrics.IncVerified(record.Method.String())
	}
	return record, nil
}

// Reject declines a pending manual payment and reopens the order.
func (s *service) Reject(ctx context.Context, input ReviewInput) (*models.PaymentRecord, error) {
	if input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var record *models.PaymentRecord
	rejected := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := s.loadRecord(ctx, repo, input.PaymentID)
		if err != nil {
			return err
		}
		record = loaded

		if record.Status == enums.PaymentRecordStatusRejected {
			return nil
		}
		if record.Status != enums.PaymentRecordStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment already settled")
		}

		order, err := s.loadOrderTx(ctx, tx, record.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot reject a payment on a "+string(order.Status)+" order")
		}

		now := s.now()
		updates := map[string]any{
			"status":      enums.PaymentRecordStatusRejected,
			"rejected_by": input.AdminID,
			"rejected_at": now,
		}
		if input.Reason != nil {
			updates["failure_reason"] = *input.Reason
		}
		if err := repo.Update(ctx, record.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject payment record")
		}
		record.Status = enums.PaymentRecordStatusRejected
		record.RejectedBy = &input.AdminID
		record.RejectedAt = &now
		record.FailureReason = input.Reason

		orderUpdates := map[string]any{"payment_status": enums.PaymentStatusFailed}
		if order.Status == enums.OrderStatusWaitingConfirmation {
			orderUpdates["status"] = enums.OrderStatusPending
		}
		if err := s.applyOrder(ctx, tx, order, orderUpdates); err != nil {
			return err
		}

		if err := s.notifier.Record(ctx, tx, order.CustomerID, enums.NotificationPaymentRejected,
			"Payment rejected",
			fmt.Sprintf("Payment for order %s could not be verified.", order.OrderNumber),
			&order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record notification")
		}

		rejected = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRejected,
			AggregateType: enums.AggregatePayment,
			AggregateID:   record.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.AdminID, Role: enums.ActorRoleAdmin.String()},
			Data: RejectedEvent{
				PaymentID:   record.ID,
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				Method:      record.Method,
				AmountCents: record.AmountCents,
				Reason:      input.Reason,
				RejectedBy:  input.AdminID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if rejected {
		s.metrics.IncRejected(record.Method.String())
	}
	return record, nil
}

// RefreshCardPayment re-reads a card capture from the gateway. A capture
// that was cut off mid-flight may have settled on the processor side; the
// status call is idempotent so it retries on transport failures.
func (s *service) RefreshCardPayment(ctx context.Context, paymentID uuid.UUID) (*models.PaymentRecord, error) {
	if paymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	record, err := s.loadRecord(ctx, s.repo, paymentID)
	if err != nil {
		return nil, err
	}
	if record.Method != enums.PaymentMethodCard {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only card payments have a gateway status")
	}
	if record.Status == enums.PaymentRecordStatusVerified {
		return record, nil
	}
	if record.GatewayReference == nil {
		return record, nil
	}

	statusCtx := ctx
	if s.cfg.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		statusCtx, cancel = context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		defer cancel()
	}

	result, err := statusWithRetry(statusCtx, s.gateway, *record.GatewayReference, s.cfg.GatewayMaxAttempts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "gateway status failed")
	}
	if !result.Approved {
		return record, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.loadOrderTx(ctx, tx, record.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot settle a payment on a "+string(order.Status)+" order")
		}

		now := s.now()
		if err := s.repo.WithTx(tx).Update(ctx, record.ID, map[string]any{
			"status":      enums.PaymentRecordStatusVerified,
			"verified_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment record")
		}
		record.Status = enums.PaymentRecordStatusVerified
		record.VerifiedAt = &now

		if order.PaymentStatus != enums.PaymentStatusPaid {
			if err := s.settleOrder(ctx, tx, order, now); err != nil {
				return err
			}
		}
		return s.emitVerified(ctx, tx, order, record, nil)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentRecord, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	records, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payment records")
	}
	return records, nil
}

func (s *service) ListPending(ctx context.Context, limit int) ([]models.PaymentRecord, error) {
	records, err := s.repo.ListByStatus(ctx, enums.PaymentRecordStatusPending, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payments")
	}
	return records, nil
}

func (s *service) newRecord(order *models.Order) *models.PaymentRecord {
	return &models.PaymentRecord{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Method:      order.PaymentMethod,
		Status:      enums.PaymentRecordStatusPending,
		AmountCents: order.TotalCents,
	}
}

// settleOrder marks the order paid and confirmed under the version guard.
func (s *service) settleOrder(ctx context.Context, tx *gorm.DB, order *models.Order, now time.Time) error {
	updates := map[string]any{
		"payment_status": enums.PaymentStatusPaid,
		"status":         enums.OrderStatusConfirmed,
		"confirmed_at":   now,
	}
	return s.applyOrder(ctx, tx, order, updates)
}

func (s *service) applyOrder(ctx context.Context, tx *gorm.DB, order *models.Order, updates map[string]any) error {
	ok, err := s.orders.WithTx(tx).UpdateGuarded(ctx, order.ID, order.Version, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
	}
	order.Version++
	return nil
}

func (s *service) emitVerified(ctx context.Context, tx *gorm.DB, order *models.Order, record *models.PaymentRecord, actor *outbox.ActorRef) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentVerified,
		AggregateType: enums.AggregatePayment,
		AggregateID:   record.ID,
		Version:       1,
		Actor:         actor,
		Data: VerifiedEvent{
			PaymentID:        record.ID,
			OrderID:          order.ID,
			OrderNumber:      order.OrderNumber,
			Method:           record.Method,
			AmountCents:      record.AmountCents,
			GatewayReference: record.GatewayReference,
			VerifiedBy:       record.VerifiedBy,
		},
	})
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadOrderTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.WithTx(tx).FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadRecord(ctx context.Context, repo Repository, id uuid.UUID) (*models.PaymentRecord, error) {
	record, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment record")
	}
	return record, nil
}
