package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lucasmarchena/partsmarket-backend/pkg/config"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
)

const gatewayBodyReadLimit int64 = 1024

var errGatewayConfigRequired = errors.New("card gateway base URL and API key are required")

// HTTPGateway talks to the external card processor over its JSON capture API.
type HTTPGateway struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// GatewayOption configures optional gateway client behavior.
type GatewayOption func(*HTTPGateway)

// WithGatewayHTTPClient overrides the default HTTP client.
func WithGatewayHTTPClient(client *http.Client) GatewayOption {
	return func(g *HTTPGateway) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// NewHTTPGateway builds the card gateway client from payments config.
func NewHTTPGateway(cfg config.PaymentsConfig, opts ...GatewayOption) (*HTTPGateway, error) {
	baseURL := strings.TrimSpace(cfg.GatewayBaseURL)
	apiKey := strings.TrimSpace(cfg.GatewayAPIKey)
	if baseURL == "" || apiKey == "" {
		return nil, errGatewayConfigRequired
	}

	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	gateway := &HTTPGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(gateway)
		}
	}
	return gateway, nil
}

type captureRequest struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	CardToken   string `json:"card_token"`
}

type captureResponse struct {
	Reference     string `json:"reference"`
	Approved      bool   `json:"approved"`
	DeclineReason string `json:"decline_reason"`
}

// Capture charges the card once. Transport failures surface as GATEWAY_ERROR
// so callers can refresh the capture status instead of re-charging.
func (g *HTTPGateway) Capture(ctx context.Context, input CaptureInput) (*CaptureResult, error) {
	if g == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "card gateway not configured")
	}

	payload, err := json.Marshal(captureRequest{
		OrderID:     input.OrderID.String(),
		OrderNumber: input.OrderNumber,
		Amount:      input.Amount.StringFixed(2),
		Currency:    input.Currency,
		CardToken:   input.CardToken,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal capture request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/captures", bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build capture request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	if input.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", input.IdempotencyKey)
	}

	return g.execute(httpReq, "capture")
}

// Status fetches the current state of a capture. Idempotent; callers may
// poll it with backoff.
func (g *HTTPGateway) Status(ctx context.Context, reference string) (*CaptureResult, error) {
	if g == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "card gateway not configured")
	}
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capture reference is required")
	}

	endpoint := g.baseURL + "/captures/" + url.PathEscape(trimmed)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build status request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	return g.execute(httpReq, "status")
}

func (g *HTTPGateway) execute(req *http.Request, op string) (*CaptureResult, error) {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, fmt.Sprintf("execute %s request", op))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, gatewayBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("%s request failed", op))
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPaymentRequired {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, gatewayBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			fmt.Sprintf("%s request rejected", op))
	}

	var apiResp captureResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, fmt.Sprintf("decode %s response", op))
	}

	return &CaptureResult{
		Reference:     apiResp.Reference,
		Approved:      apiResp.Approved,
		DeclineReason: apiResp.DeclineReason,
	}, nil
}
