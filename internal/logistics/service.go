package logistics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
)

// TimelineEntry is one public tracking step.
type TimelineEntry struct {
	Status      enums.OrderStatus `json:"status"`
	Description string            `json:"description"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// Timeline is the public view of a shipment. It carries no customer data.
type Timeline struct {
	OrderNumber    string            `json:"order_number"`
	TrackingNumber *string           `json:"tracking_number,omitempty"`
	Carrier        *string           `json:"carrier,omitempty"`
	Status         enums.OrderStatus `json:"status"`
	Events         []TimelineEntry   `json:"events"`
}

// Service mirrors order state into the tracking tables and serves public
// timeline lookups.
type Service interface {
	Sync(ctx context.Context, tx *gorm.DB, order *models.Order, description string) error
	TrackByNumber(ctx context.Context, trackingNumber string) (*Timeline, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a logistics service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("logistics repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Sync upserts the order's record and appends a timeline event, all inside
// the caller's transaction.
func (s *service) Sync(ctx context.Context, tx *gorm.DB, order *models.Order, description string) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	repo := s.repo.WithTx(tx)

	record, err := repo.FindByOrder(ctx, order.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load logistics record")
		}
		record = &models.LogisticsRecord{
			OrderID:        order.ID,
			OrderNumber:    order.OrderNumber,
			TrackingNumber: order.TrackingNumber,
			Status:         order.Status,
		}
		if err := repo.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create logistics record")
		}
	} else {
		updates := map[string]any{"status": order.Status}
		if order.TrackingNumber != nil {
			updates["tracking_number"] = *order.TrackingNumber
		}
		if err := repo.Update(ctx, record.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update logistics record")
		}
	}

	event := &models.LogisticsEvent{
		RecordID:    record.ID,
		Status:      order.Status,
		Description: description,
		OccurredAt:  s.now(),
	}
	if err := repo.AppendEvent(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append logistics event")
	}
	return nil
}

func (s *service) TrackByNumber(ctx context.Context, trackingNumber string) (*Timeline, error) {
	if trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}

	record, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}

	timeline := &Timeline{
		OrderNumber:    record.OrderNumber,
		TrackingNumber: record.TrackingNumber,
		Carrier:        record.Carrier,
		Status:         record.Status,
		Events:         make([]TimelineEntry, 0, len(record.Events)),
	}
	for _, event := range record.Events {
		timeline.Events = append(timeline.Events, TimelineEntry{
			Status:      event.Status,
			Description: event.Description,
			OccurredAt:  event.OccurredAt,
		})
	}
	return timeline, nil
}
