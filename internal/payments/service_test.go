package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/internal/orders"
	"github.com/lucasmarchena/partsmarket-backend/pkg/config"
	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/outbox"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
)

type stubPaymentsRepo struct {
	record  *models.PaymentRecord
	created []*models.PaymentRecord
	updates map[string]any
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentsRepo) Create(ctx context.Context, record *models.PaymentRecord) error {
	s.created = append(s.created, record)
	return nil
}

func (s *stubPaymentsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.PaymentRecord, error) {
	if s.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.record, nil
}

func (s *stubPaymentsRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentRecord, error) {
	return nil, nil
}

func (s *stubPaymentsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubPaymentsRepo) ListByStatus(ctx context.Context, status enums.PaymentRecordStatus, limit int) ([]models.PaymentRecord, error) {
	return nil, nil
}

type stubOrderStore struct {
	order   *models.Order
	updates map[string]any
}

func (s *stubOrderStore) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrderStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrderStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}

func (s *stubOrderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrderStore) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderStore) FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return nil, nil
}

func (s *stubOrderStore) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters orders.Filters) (*orders.List, error) {
	return &orders.List{}, nil
}

func (s *stubOrderStore) ListForPartner(ctx context.Context, partnerID uuid.UUID, params pagination.Params, filters orders.Filters) (*orders.List, error) {
	return &orders.List{}, nil
}

func (s *stubOrderStore) ListAll(ctx context.Context, params pagination.Params, filters orders.Filters) (*orders.List, error) {
	return &orders.List{}, nil
}

func (s *stubOrderStore) UpdateGuarded(ctx context.Context, orderID uuid.UUID, version int, updates map[string]any) (bool, error) {
	s.updates = updates
	return true, nil
}

func (s *stubOrderStore) FindUnpaidPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrderStore) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

type stubDebiter struct {
	allowed bool
	debits  []int
}

func (s *stubDebiter) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, amountCents int, reference string) (*models.WalletTransaction, error) {
	if !s.allowed {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet balance too low")
	}
	s.debits = append(s.debits, amountCents)
	return &models.WalletTransaction{ID: uuid.New()}, nil
}

type stubPayTx struct{}

func (stubPayTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubPayOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubPayOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubPayNotifier struct {
	recorded []enums.NotificationKind
}

func (s *stubPayNotifier) Record(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.NotificationKind, title, message string, orderID *uuid.UUID) error {
	s.recorded = append(s.recorded, kind)
	return nil
}

type stubGateway struct {
	result   *CaptureResult
	err      error
	captures int
	statuses int
}

func (s *stubGateway) Capture(ctx context.Context, input CaptureInput) (*CaptureResult, error) {
	s.captures++
	return s.result, s.err
}

func (s *stubGateway) Status(ctx context.Context, reference string) (*CaptureResult, error) {
	s.statuses++
	return s.result, s.err
}

type paymentsFixture struct {
	repo     *stubPaymentsRepo
	orders   *stubOrderStore
	wallet   *stubDebiter
	outbox   *stubPayOutbox
	notifier *stubPayNotifier
	gateway  *stubGateway
	svc      Service
}

func newPaymentsFixture(t *testing.T, order *models.Order) *paymentsFixture {
	t.Helper()
	f := &paymentsFixture{
		repo:     &stubPaymentsRepo{},
		orders:   &stubOrderStore{order: order},
		wallet:   &stubDebiter{allowed: true},
		outbox:   &stubPayOutbox{},
		notifier: &stubPayNotifier{},
		gateway:  &stubGateway{result: &CaptureResult{Reference: "gw-1", Approved: true}},
	}
	svc, err := NewService(f.repo, f.orders, f.wallet, stubPayTx{}, f.outbox, f.notifier, f.gateway, DefaultPolicy(), nil, config.PaymentsConfig{GatewayMaxAttempts: 3})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	f.svc = svc
	return f
}

func unpaidOrder(method enums.PaymentMethod) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "PM-20260101120000-00001",
		CustomerID:    uuid.New(),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		PaymentMethod: method,
		TotalCents:    6400,
	}
}

func TestMethodsForRole(t *testing.T) {
	policy := DefaultPolicy()

	customer := policy.MethodsFor(enums.ActorRoleCustomer)
	if len(customer) != 4 {
		t.Fatalf("customers should see every method, got %v", customer)
	}

	partner := policy.MethodsFor(enums.ActorRolePartner)
	if len(partner) != 1 || partner[0] != enums.PaymentMethodBankTransfer {
		t.Fatalf("partners pay by bank transfer only, got %v", partner)
	}

	if policy.Allows(enums.PaymentMethodWallet, enums.ActorRoleAdmin) {
		t.Fatal("admins have no wallet of their own")
	}
}

func TestAttemptWalletSettlesInstantly(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodWallet)
	f := newPaymentsFixture(t, order)

	record, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("Attempt failed: %v", err)
	}
	if record.Status != enums.PaymentRecordStatusVerified {
		t.Fatalf("wallet payments settle instantly, got %s", record.Status)
	}
	if len(f.wallet.debits) != 1 || f.wallet.debits[0] != 6400 {
		t.Fatalf("expected debit of order total, got %v", f.wallet.debits)
	}
	if f.orders.updates["payment_status"] != enums.PaymentStatusPaid {
		t.Fatalf("expected order marked paid, got %v", f.orders.updates)
	}
	if f.orders.updates["status"] != enums.OrderStatusConfirmed {
		t.Fatalf("expected order confirmed, got %v", f.orders.updates)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventPaymentVerified {
		t.Fatalf("expected payment.verified event, got %+v", f.outbox.events)
	}
}

func TestAttemptWalletInsufficientBalance(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodWallet)
	f := newPaymentsFixture(t, order)
	f.wallet.allowed = false

	_, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance) {
		t.Fatalf("expected INSUFFICIENT_BALANCE, got %v", err)
	}
	if len(f.repo.created) != 0 {
		t.Fatal("no record must survive a failed wallet debit")
	}
}

func TestAttemptBankTransferParksForReview(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodBankTransfer)
	f := newPaymentsFixture(t, order)

	record, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("Attempt failed: %v", err)
	}
	if record.Status != enums.PaymentRecordStatusPending {
		t.Fatalf("manual methods stay pending, got %s", record.Status)
	}
	if f.orders.updates["status"] != enums.OrderStatusWaitingConfirmation {
		t.Fatalf("expected order waiting_confirmation, got %v", f.orders.updates)
	}
	if f.orders.updates["payment_status"] != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment status, got %v", f.orders.updates)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventPaymentPending {
		t.Fatalf("expected payment.pending event, got %+v", f.outbox.events)
	}
	if len(f.notifier.recorded) != 1 || f.notifier.recorded[0] != enums.NotificationPaymentPending {
		t.Fatalf("expected payment-pending notification, got %v", f.notifier.recorded)
	}
}

func TestAttemptCardApproved(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodCard)
	f := newPaymentsFixture(t, order)

	record, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
		CardToken:   "tok-visa",
	})
	if err != nil {
		t.Fatalf("Attempt failed: %v", err)
	}
	if f.gateway.captures != 1 {
		t.Fatalf("expected one capture, got %d", f.gateway.captures)
	}
	if record.Status != enums.PaymentRecordStatusVerified {
		t.Fatalf("expected verified record, got %s", record.Status)
	}
	if record.GatewayReference == nil || *record.GatewayReference != "gw-1" {
		t.Fatalf("expected gateway reference, got %v", record.GatewayReference)
	}
	if f.orders.updates["status"] != enums.OrderStatusConfirmed {
		t.Fatalf("expected order confirmed, got %v", f.orders.updates)
	}
}

func TestAttemptCardDeclinedKeepsOrderPending(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodCard)
	f := newPaymentsFixture(t, order)
	f.gateway.result = &CaptureResult{Reference: "gw-2", Approved: false, DeclineReason: "insufficient funds"}

	record, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
		CardToken:   "tok-declined",
	})
	if err != nil {
		t.Fatalf("a decline is an outcome, not an error: %v", err)
	}
	if record.Status != enums.PaymentRecordStatusFailed {
		t.Fatalf("expected failed record, got %s", record.Status)
	}
	if record.FailureReason == nil || *record.FailureReason != "insufficient funds" {
		t.Fatalf("expected decline reason, got %v", record.FailureReason)
	}
	if f.orders.updates != nil {
		t.Fatalf("order must stay untouched on decline, got %v", f.orders.updates)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventPaymentFailed {
		t.Fatalf("expected payment.failed event, got %+v", f.outbox.events)
	}
}

func TestAttemptCardRequiresToken(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodCard)
	f := newPaymentsFixture(t, order)

	_, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestAttemptDisallowedRole(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodWallet)
	f := newPaymentsFixture(t, order)

	_, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRolePartner,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestAttemptPaidOrderIsStateConflict(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodCard)
	order.PaymentStatus = enums.PaymentStatusPaid
	f := newPaymentsFixture(t, order)

	_, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
		CardToken:   "tok-visa",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if f.gateway.captures != 0 {
		t.Fatal("no capture must run against a paid order")
	}
}

func TestVerifySettlesPendingPayment(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodBankTransfer)
	order.Status = enums.OrderStatusWaitingConfirmation
	order.PaymentStatus = enums.PaymentStatusPending
	f := newPaymentsFixture(t, order)
	f.repo.record = &models.PaymentRecord{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Method:      enums.PaymentMethodBankTransfer,
		Status:      enums.PaymentRecordStatusPending,
		AmountCents: 6400,
	}

	record, err := f.svc.Verify(context.Background(), ReviewInput{
		PaymentID: f.repo.record.ID,
		AdminID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if record.Status != enums.PaymentRecordStatusVerified {
		t.Fatalf("expected verified record, got %s", record.Status)
	}
	if f.orders.updates["payment_status"] != enums.PaymentStatusPaid {
		t.Fatalf("expected order paid, got %v", f.orders.updates)
	}
	if f.orders.updates["status"] != enums.OrderStatusConfirmed {
		t.Fatalf("expected order confirmed, got %v", f.orders.updates)
	}
	if len(f.notifier.recorded) != 1 || f.notifier.recorded[0] != enums.NotificationOrderConfirmed {
		t.Fatalf("expected confirmation notification, got %v", f.notifier.recorded)
	}
}

func TestVerifyTwiceIsNoop(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodBankTransfer)
	f := newPaymentsFixture(t, order)
	f.repo.record = &models.PaymentRecord{
		ID:      uuid.New(),
		OrderID: order.ID,
		Method:  enums.PaymentMethodBankTransfer,
		Status:  enums.PaymentRecordStatusVerified,
	}

	record, err := f.svc.Verify(context.Background(), ReviewInput{
		PaymentID: f.repo.record.ID,
		AdminID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("repeat verify should be a no-op, got %v", err)
	}
	if record.Status != enums.PaymentRecordStatusVerified {
		t.Fatalf("expected verified record, got %s", record.Status)
	}
	if f.orders.updates != nil {
		t.Fatalf("order must not move twice, got %v", f.orders.updates)
	}
	if len(f.outbox.events) != 0 {
		t.Fatal("no event expected on repeat verify")
	}
}

func TestVerifyOnCancelledOrderIsConflict(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodBankTransfer)
	order.Status = enums.OrderStatusCancelled
	order.PaymentStatus = enums.PaymentStatusPending
	f := newPaymentsFixture(t, order)
	f.repo.record = &models.PaymentRecord{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Method:      enums.PaymentMethodBankTransfer,
		Status:      enums.PaymentRecordStatusPending,
		AmountCents: 6400,
	}

	_, err := f.svc.Verify(context.Background(), ReviewInput{
		PaymentID: f.repo.record.ID,
		AdminID:   uuid.New(),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if f.orders.updates != nil {
		t.Fatalf("a cancelled order must not be resurrected, got %v", f.orders.updates)
	}
}

func TestRejectOnCompletedOrderIsConflict(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodBankTransfer)
	order.Status = enums.OrderStatusCompleted
	f := newPaymentsFixture(t, order)
	f.repo.record = &models.PaymentRecord{
		ID:      uuid.New(),
		OrderID: order.ID,
		Method:  enums.PaymentMethodBankTransfer,
		Status:  enums.PaymentRecordStatusPending,
	}

	_, err := f.svc.Reject(context.Background(), ReviewInput{
		PaymentID: f.repo.record.ID,
		AdminID:   uuid.New(),
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if f.orders.updates != nil {
		t.Fatalf("no order writes expected, got %v", f.orders.updates)
	}
}

func TestAttemptOnCancelledOrderIsConflict(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodCard)
	order.Status = enums.OrderStatusCancelled
	f := newPaymentsFixture(t, order)

	_, err := f.svc.Attempt(context.Background(), AttemptInput{
		OrderID:     order.ID,
		ActorUserID: order.CustomerID,
		ActorRole:   enums.ActorRoleCustomer,
		CardToken:   "tok-visa",
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if f.gateway.captures != 0 {
		t.Fatal("no capture must run against a cancelled order")
	}
}

func TestRejectReopensOrder(t *testing.T) {
	reason := "no matching transfer found"
	order := unpaidOrder(enums.PaymentMethodBankTransfer)
	order.Status = enums.OrderStatusWaitingConfirmation
	order.PaymentStatus = enums.PaymentStatusPending
	f := newPaymentsFixture(t, order)
	f.repo.record = &models.PaymentRecord{
		ID:          uuid.New(),
		OrderID:     order.ID,
		Method:      enums.PaymentMethodBankTransfer,
		Status:      enums.PaymentRecordStatusPending,
		AmountCents: 6400,
	}

	record, err := f.svc.Reject(context.Background(), ReviewInput{
		PaymentID: f.repo.record.ID,
		AdminID:   uuid.New(),
		Reason:    &reason,
	})
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if record.Status != enums.PaymentRecordStatusRejected {
		t.Fatalf("expected rejected record, got %s", record.Status)
	}
	if f.orders.updates["payment_status"] != enums.PaymentStatusFailed {
		t.Fatalf("expected failed payment status, got %v", f.orders.updates)
	}
	if f.orders.updates["status"] != enums.OrderStatusPending {
		t.Fatalf("expected order back to pending, got %v", f.orders.updates)
	}
	if len(f.notifier.recorded) != 1 || f.notifier.recorded[0] != enums.NotificationPaymentRejected {
		t.Fatalf("expected rejection notification, got %v", f.notifier.recorded)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventPaymentRejected {
		t.Fatalf("expected payment.rejected event, got %+v", f.outbox.events)
	}
}

func TestRefreshCardPaymentSettlesLateCapture(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodCard)
	f := newPaymentsFixture(t, order)
	ref := "gw-3"
	f.repo.record = &models.PaymentRecord{
		ID:               uuid.New(),
		OrderID:          order.ID,
		Method:           enums.PaymentMethodCard,
		Status:           enums.PaymentRecordStatusFailed,
		GatewayReference: &ref,
		AmountCents:      6400,
	}
	f.gateway.result = &CaptureResult{Reference: ref, Approved: true}

	record, err := f.svc.RefreshCardPayment(context.Background(), f.repo.record.ID)
	if err != nil {
		t.Fatalf("RefreshCardPayment failed: %v", err)
	}
	if f.gateway.statuses != 1 {
		t.Fatalf("expected one status call, got %d", f.gateway.statuses)
	}
	if record.Status != enums.PaymentRecordStatusVerified {
		t.Fatalf("expected verified record, got %s", record.Status)
	}
	if f.orders.updates["payment_status"] != enums.PaymentStatusPaid {
		t.Fatalf("expected order paid, got %v", f.orders.updates)
	}
}

func TestRefreshCardPaymentOnCancelledOrderIsConflict(t *testing.T) {
	order := unpaidOrder(enums.PaymentMethodCard)
	order.Status = enums.OrderStatusCancelled
	f := newPaymentsFixture(t, order)
	ref := "gw-4"
	f.repo.record = &models.PaymentRecord{
		ID:               uuid.New(),
		OrderID:          order.ID,
		Method:           enums.PaymentMethodCard,
		Status:           enums.PaymentRecordStatusFailed,
		GatewayReference: &ref,
	}
	f.gateway.result = &CaptureResult{Reference: ref, Approved: true}

	_, err := f.svc.RefreshCardPayment(context.Background(), f.repo.record.ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
	if f.orders.updates != nil {
		t.Fatalf("a cancelled order must not be settled, got %v", f.orders.updates)
	}
}

func TestAmountFromCents(t *testing.T) {
	if got := AmountFromCents(6400).String(); got != "64" {
		t.Fatalf("expected 64, got %s", got)
	}
	if got := AmountFromCents(199).String(); got != "1.99" {
		t.Fatalf("expected 1.99, got %s", got)
	}
}
