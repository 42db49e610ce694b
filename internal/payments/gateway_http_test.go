package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/pkg/config"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
)

func gatewayConfig(baseURL string) config.PaymentsConfig {
	return config.PaymentsConfig{
		GatewayBaseURL: baseURL,
		GatewayAPIKey:  "gw-key",
	}
}

func TestHTTPGatewayCaptureSendsAuthAndIdempotencyKey(t *testing.T) {
	var gotAuth, gotIdem string
	var gotBody captureRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode capture body: %v", err)
		}
		json.NewEncoder(w).Encode(captureResponse{Reference: "gw-77", Approved: true})
	}))
	defer server.Close()

	gateway, err := NewHTTPGateway(gatewayConfig(server.URL))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	result, err := gateway.Capture(context.Background(), CaptureInput{
		OrderID:        uuid.New(),
		OrderNumber:    "PM-1001",
		Amount:         AmountFromCents(12550),
		Currency:       "USD",
		CardToken:      "tok_abc",
		IdempotencyKey: "idem-1",
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !result.Approved || result.Reference != "gw-77" {
		t.Fatalf("unexpected result %+v", result)
	}
	if gotAuth != "Bearer gw-key" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotIdem != "idem-1" {
		t.Fatalf("expected idempotency key header, got %q", gotIdem)
	}
	if gotBody.Amount != "125.50" {
		t.Fatalf("expected major-unit amount 125.50, got %q", gotBody.Amount)
	}
}

func TestHTTPGatewayCaptureSurfacesDecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(captureResponse{Reference: "gw-12", Approved: false, DeclineReason: "insufficient_funds"})
	}))
	defer server.Close()

	gateway, err := NewHTTPGateway(gatewayConfig(server.URL))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	result, err := gateway.Capture(context.Background(), CaptureInput{
		OrderID:     uuid.New(),
		OrderNumber: "PM-1002",
		Amount:      AmountFromCents(500),
		Currency:    "USD",
		CardToken:   "tok_declined",
	})
	if err != nil {
		t.Fatalf("decline should not be a transport error: %v", err)
	}
	if result.Approved {
		t.Fatal("expected decline")
	}
	if result.DeclineReason != "insufficient_funds" {
		t.Fatalf("unexpected decline reason %q", result.DeclineReason)
	}
}

func TestHTTPGatewayStatusMapsServerErrorsToGatewayCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream boom", http.StatusBadGateway)
	}))
	defer server.Close()

	gateway, err := NewHTTPGateway(gatewayConfig(server.URL))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	_, err = gateway.Status(context.Background(), "gw-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeGateway) {
		t.Fatalf("expected GATEWAY_ERROR, got %v", err)
	}
}

func TestNewHTTPGatewayRequiresConfig(t *testing.T) {
	if _, err := NewHTTPGateway(config.PaymentsConfig{}); err == nil {
		t.Fatal("expected error for missing gateway config")
	}
}
