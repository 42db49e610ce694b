package reconcile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

func orderEvent(t *testing.T, sequence int64, eventType enums.OutboxEventType, payload any) Event {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return Event{
		Sequence:      sequence,
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		OccurredAt:    time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(sequence) * time.Second),
		Data:          data,
	}
}

func paymentEvent(t *testing.T, sequence int64, eventType enums.OutboxEventType, payload any) Event {
	t.Helper()
	event := orderEvent(t, sequence, eventType, payload)
	event.AggregateType = enums.AggregatePayment
	return event
}

func TestAuthoritativeEventsBuildViews(t *testing.T) {
	p := NewProjection()
	orderID := uuid.New()

	err := p.ApplyAuthoritative(orderEvent(t, 1, enums.EventOrderCreated, map[string]any{
		"order_id":     orderID,
		"order_number": "PM-20260101120000-00001",
		"total_cents":  6400,
	}))
	if err != nil {
		t.Fatalf("apply created: %v", err)
	}

	view, ok := p.Get(orderID)
	if !ok {
		t.Fatal("expected view after order.created")
	}
	if view.Status != enums.OrderStatusPending || view.Speculative {
		t.Fatalf("unexpected view %+v", view)
	}

	err = p.ApplyAuthoritative(orderEvent(t, 2, enums.EventOrderShipped, map[string]any{
		"order_id":        orderID,
		"tracking_number": "TRK-1",
	}))
	if err != nil {
		t.Fatalf("apply shipped: %v", err)
	}

	view, _ = p.Get(orderID)
	if view.Status != enums.OrderStatusShipped || view.TrackingNumber != "TRK-1" {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Sequence != 2 {
		t.Fatalf("expected sequence 2, got %d", view.Sequence)
	}
}

func TestStaleSequenceIsIgnored(t *testing.T) {
	p := NewProjection()
	orderID := uuid.New()

	if err := p.ApplyAuthoritative(orderEvent(t, 5, enums.EventOrderCreated, map[string]any{"order_id": orderID})); err != nil {
		t.Fatal(err)
	}
	// a replayed page must not rewind the view
	if err := p.ApplyAuthoritative(orderEvent(t, 3, enums.EventOrderCancelled, map[string]any{"order_id": orderID})); err != nil {
		t.Fatal(err)
	}

	view, _ := p.Get(orderID)
	if view.Status == enums.OrderStatusCancelled {
		t.Fatal("stale event must not apply")
	}
	if p.LastSequence() != 5 {
		t.Fatalf("expected last sequence 5, got %d", p.LastSequence())
	}
}

func TestOptimisticReplacedByAuthoritative(t *testing.T) {
	p := NewProjection()
	orderID := uuid.New()

	p.ApplyOptimistic(OrderView{
		OrderID:     orderID,
		OrderNumber: "PM-20260101120000-00002",
		Status:      enums.OrderStatusConfirmed,
	})

	view, _ := p.Get(orderID)
	if !view.Speculative {
		t.Fatal("local update must render as speculative")
	}

	if err := p.ApplyAuthoritative(orderEvent(t, 1, enums.EventOrderConfirmed, map[string]any{
		"order_id":     orderID,
		"order_number": "PM-20260101120000-00002",
	})); err != nil {
		t.Fatal(err)
	}

	view, _ = p.Get(orderID)
	if view.Speculative {
		t.Fatal("feed confirmation must clear the speculative flag")
	}
	if view.Status != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected status %s", view.Status)
	}
}

func TestRollbackRestoresConfirmedView(t *testing.T) {
	p := NewProjection()
	orderID := uuid.New()

	if err := p.ApplyAuthoritative(orderEvent(t, 1, enums.EventOrderCreated, map[string]any{
		"order_id":     orderID,
		"order_number": "PM-20260101120000-00003",
	})); err != nil {
		t.Fatal(err)
	}

	p.ApplyOptimistic(OrderView{
		OrderID:     orderID,
		OrderNumber: "PM-20260101120000-00003",
		Status:      enums.OrderStatusCancelled,
	})

	p.RollbackOptimistic(orderID)

	view, ok := p.Get(orderID)
	if !ok {
		t.Fatal("confirmed view must survive a rollback")
	}
	if view.Status != enums.OrderStatusPending || view.Speculative {
		t.Fatalf("expected restored pending view, got %+v", view)
	}
}

func TestRollbackDropsNeverConfirmedView(t *testing.T) {
	p := NewProjection()
	orderID := uuid.New()

	p.ApplyOptimistic(OrderView{OrderID: orderID, Status: enums.OrderStatusPending})
	p.RollbackOptimistic(orderID)

	if _, ok := p.Get(orderID); ok {
		t.Fatal("an order that was never confirmed must vanish on rollback")
	}
}

func TestDeleteEventRemovesView(t *testing.T) {
	p := NewProjection()
	orderID := uuid.New()

	if err := p.ApplyAuthoritative(orderEvent(t, 1, enums.EventOrderCreated, map[string]any{"order_id": orderID})); err != nil {
		t.Fatal(err)
	}
	if err := p.ApplyAuthoritative(orderEvent(t, 2, enums.EventOrderDeleted, map[string]any{"order_id": orderID})); err != nil {
		t.Fatal(err)
	}

	if _, ok := p.Get(orderID); ok {
		t.Fatal("deleted orders must leave every view")
	}
	if len(p.List()) != 0 {
		t.Fatal("expected empty projection")
	}
}

func TestPaymentEventsMovePaymentStatus(t *testing.T) {
	p := NewProjection()
	orderID := uuid.New()

	if err := p.ApplyAuthoritative(orderEvent(t, 1, enums.EventOrderCreated, map[string]any{"order_id": orderID})); err != nil {
		t.Fatal(err)
	}
	if err := p.ApplyAuthoritative(paymentEvent(t, 2, enums.EventPaymentVerified, map[string]any{
		"payment_id": uuid.New(),
		"order_id":   orderID,
	})); err != nil {
		t.Fatal(err)
	}

	view, _ := p.Get(orderID)
	if view.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", view.PaymentStatus)
	}
	if view.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", view.Status)
	}
}

func TestSubscribeReceivesAppliedEvents(t *testing.T) {
	p := NewProjection()
	ch := p.Subscribe(4)
	orderID := uuid.New()

	if err := p.ApplyAuthoritative(orderEvent(t, 1, enums.EventOrderCreated, map[string]any{"order_id": orderID})); err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-ch:
		if event.Sequence != 1 {
			t.Fatalf("expected sequence 1, got %d", event.Sequence)
		}
	default:
		t.Fatal("expected a fanned-out event")
	}
}
