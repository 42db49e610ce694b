package reconcile

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
)

// OrderView is the admin dashboard's picture of one order. Speculative views
// came from a local optimistic update and have not been confirmed by the
// authoritative feed yet.
type OrderView struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	CustomerID     uuid.UUID           `json:"customer_id,omitempty"`
	PartnerID      *uuid.UUID          `json:"partner_id,omitempty"`
	Status         enums.OrderStatus   `json:"status"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	PaymentMethod  enums.PaymentMethod `json:"payment_method,omitempty"`
	TotalCents     int                 `json:"total_cents"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	Speculative    bool                `json:"speculative"`
	Sequence       int64               `json:"sequence"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Projection is the event-sourced read model behind the reconciliation
// dashboard. Optimistic local updates render immediately; the authoritative
// outbox feed replaces them in sequence order. All methods are safe for
// concurrent use.
type Projection struct {
	mu           sync.RWMutex
	views        map[uuid.UUID]OrderView
	snapshots    map[uuid.UUID]OrderView
	lastSequence int64
	subscribers  []chan Event
	now          func() time.Time
}

// NewProjection returns an empty projection.
func NewProjection() *Projection {
	return &Projection{
		views:     make(map[uuid.UUID]OrderView),
		snapshots: make(map[uuid.UUID]OrderView),
		now:       time.Now,
	}
}

// ApplyOptimistic overlays a local update before the feed confirms it. The
// previous confirmed view is kept so a failed operation can roll back.
func (p *Projection) ApplyOptimistic(view OrderView) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current, ok := p.views[view.OrderID]; ok && !current.Speculative {
		p.snapshots[view.OrderID] = current
	}
	view.Speculative = true
	view.UpdatedAt = p.now()
	p.views[view.OrderID] = view
}

// RollbackOptimistic restores the last confirmed view after the operation
// behind a speculative update failed. Orders that never had a confirmed
// view disappear entirely.
func (p *Projection) RollbackOptimistic(orderID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.views[orderID]
	if !ok || !current.Speculative {
		return
	}
	if snapshot, ok := p.snapshots[orderID]; ok {
		p.views[orderID] = snapshot
		delete(p.snapshots, orderID)
		return
	}
	delete(p.views, orderID)
}

// ApplyAuthoritative folds one feed event into the projection. Events at or
// below the last applied sequence are ignored, so replaying a feed page is
// harmless. The event is fanned out to subscribers after it is applied.
func (p *Projection) ApplyAuthoritative(event Event) error {
	p.mu.Lock()

	if event.Sequence <= p.lastSequence {
		p.mu.Unlock()
		return nil
	}
	p.lastSequence = event.Sequence

	if err := p.applyLocked(event); err != nil {
		p.mu.Unlock()
		return err
	}
	subscribers := make([]chan Event, len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (p *Projection) applyLocked(event Event) error {
	switch event.AggregateType {
	case enums.AggregateOrder:
		return p.applyOrderLocked(event)
	case enums.AggregatePayment:
		return p.applyPaymentLocked(event)
	default:
		return nil
	}
}

func (p *Projection) applyOrderLocked(event Event) error {
	var payload orderPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return err
	}

	if event.EventType == enums.EventOrderDeleted {
		delete(p.views, payload.OrderID)
		delete(p.snapshots, payload.OrderID)
		return nil
	}

	view := p.views[payload.OrderID]
	view.OrderID = payload.OrderID
	if payload.OrderNumber != "" {
		view.OrderNumber = payload.OrderNumber
	}

	switch event.EventType {
	case enums.EventOrderCreated:
		view.CustomerID = payload.CustomerID
		view.PaymentMethod = payload.PaymentMethod
		view.TotalCents = payload.TotalCents
		view.Status = enums.OrderStatusPending
		view.PaymentStatus = enums.PaymentStatusUnpaid
	case enums.EventOrderAssigned:
		partnerID := payload.PartnerID
		view.PartnerID = &partnerID
	case enums.EventOrderShipped:
		view.Status = enums.OrderStatusShipped
		view.TrackingNumber = payload.TrackingNumber
	case enums.EventOrderCancelled:
		view.Status = enums.OrderStatusCancelled
		if payload.RefundedCents > 0 {
			view.PaymentStatus = enums.PaymentStatusRefunded
		}
	case enums.EventOrderConfirmed:
		view.Status = enums.OrderStatusConfirmed
	case enums.EventOrderDelivered:
		view.Status = enums.OrderStatusDelivered
	case enums.EventOrderCompleted:
		view.Status = enums.OrderStatusCompleted
	case enums.EventOrderStatusMoved:
		if payload.To != "" {
			view.Status = payload.To
		}
	}

	view.Speculative = false
	view.Sequence = event.Sequence
	view.UpdatedAt = event.OccurredAt
	p.views[payload.OrderID] = view
	delete(p.snapshots, payload.OrderID)
	return nil
}

func (p *Projection) applyPaymentLocked(event Event) error {
	var payload paymentPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return err
	}
	if payload.OrderID == uuid.Nil {
		return nil
	}

	view, ok := p.views[payload.OrderID]
	if !ok {
		return nil
	}

	switch event.EventType {
	case enums.EventPaymentPending:
		view.PaymentStatus = enums.PaymentStatusPending
	case enums.EventPaymentVerified:
		view.PaymentStatus = enums.PaymentStatusPaid
		view.Status = enums.OrderStatusConfirmed
	case enums.EventPaymentRejected, enums.EventPaymentFailed:
		view.PaymentStatus = enums.PaymentStatusFailed
	default:
		return nil
	}

	view.Speculative = false
	view.Sequence = event.Sequence
	view.UpdatedAt = event.OccurredAt
	p.views[payload.OrderID] = view
	delete(p.snapshots, payload.OrderID)
	return nil
}

// Get returns the current view of one order.
func (p *Projection) Get(orderID uuid.UUID) (OrderView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	view, ok := p.views[orderID]
	return view, ok
}

// List returns every view ordered by most recent update.
func (p *Projection) List() []OrderView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	views := make([]OrderView, 0, len(p.views))
	for _, view := range p.views {
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].UpdatedAt.After(views[j].UpdatedAt)
	})
	return views
}

// LastSequence reports the newest authoritative sequence applied.
func (p *Projection) LastSequence() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSequence
}

// Subscribe registers a feed listener. Slow listeners drop events rather
// than blocking the projection.
func (p *Projection) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	p.mu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.mu.Unlock()
	return ch
}
