package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
)

// CaptureInput describes a card capture request. Amounts cross the gateway
// boundary in major units.
type CaptureInput struct {
	OrderID        uuid.UUID
	OrderNumber    string
	Amount         decimal.Decimal
	Currency       string
	CardToken      string
	IdempotencyKey string
}

// CaptureResult is the gateway's answer to a capture or status call.
type CaptureResult struct {
	Reference     string
	Approved      bool
	DeclineReason string
}

// Gateway abstracts the external card processor. Capture is never retried;
// Status is idempotent and may be polled.
type Gateway interface {
	Capture(ctx context.Context, input CaptureInput) (*CaptureResult, error)
	Status(ctx context.Context, reference string) (*CaptureResult, error)
}

// AmountFromCents converts an integer cent amount into the gateway's
// major-unit representation.
func AmountFromCents(cents int) decimal.Decimal {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100))
}

// statusWithRetry polls the gateway status call with exponential backoff.
// Only transport-level failures are retried.
func statusWithRetry(ctx context.Context, gw Gateway, reference string, maxAttempts int) (*CaptureResult, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var result *CaptureResult
	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := gw.Status(ctx, reference)
		if err != nil {
			if pkgerrors.HasCode(err, pkgerrors.CodeGateway) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
