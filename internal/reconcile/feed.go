package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasmarchena/partsmarket-backend/pkg/config"
	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
)

type feedSource interface {
	FetchFeed(afterSequence int64, limit int) ([]models.OutboxEvent, error)
}

// Tailer keeps a projection current by polling the outbox feed.
type Tailer struct {
	source     feedSource
	projection *Projection
	logger     *logger.Logger
	batchSize  int
	interval   time.Duration
}

// NewTailer wires a feed tailer for the given projection.
func NewTailer(source feedSource, projection *Projection, logg *logger.Logger, cfg config.OutboxConfig) (*Tailer, error) {
	if source == nil {
		return nil, fmt.Errorf("feed source required")
	}
	if projection == nil {
		return nil, fmt.Errorf("projection required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	interval := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Tailer{
		source:     source,
		projection: projection,
		logger:     logg,
		batchSize:  batchSize,
		interval:   interval,
	}, nil
}

// Run polls until the context is cancelled.
func (t *Tailer) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.Poll(ctx); err != nil {
				t.logger.Error(ctx, "reconcile feed poll failed", err)
			}
		}
	}
}

// Poll drains one batch from the feed into the projection.
func (t *Tailer) Poll(ctx context.Context) error {
	rows, err := t.source.FetchFeed(t.projection.LastSequence(), t.batchSize)
	if err != nil {
		return err
	}
	for _, row := range rows {
		event, err := DecodeEvent(row)
		if err != nil {
			t.logger.Error(ctx, "skipping undecodable feed event", err)
			continue
		}
		if err := t.projection.ApplyAuthoritative(*event); err != nil {
			t.logger.Error(ctx, "failed to apply feed event", err)
		}
	}
	return nil
}
