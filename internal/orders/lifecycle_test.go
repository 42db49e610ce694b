package orders

import (
	"testing"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
)

func TestCanTransitionForwardPath(t *testing.T) {
	path := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusWaitingConfirmation,
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionRejectsBackward(t *testing.T) {
	cases := [][2]enums.OrderStatus{
		{enums.OrderStatusConfirmed, enums.OrderStatusPending},
		{enums.OrderStatusShipped, enums.OrderStatusProcessing},
		{enums.OrderStatusDelivered, enums.OrderStatusShipped},
		{enums.OrderStatusCompleted, enums.OrderStatusDelivered},
	}
	for _, c := range cases {
		if CanTransition(c[0], c[1]) {
			t.Fatalf("expected %s -> %s to be rejected", c[0], c[1])
		}
	}
}

func TestCancelAllowedFromAnyNonTerminal(t *testing.T) {
	for _, from := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusWaitingConfirmation,
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelayed,
		enums.OrderStatusLost,
	} {
		if !CanTransition(from, enums.OrderStatusCancelled) {
			t.Fatalf("expected cancel from %s to be allowed", from)
		}
	}
	if CanTransition(enums.OrderStatusCompleted, enums.OrderStatusCancelled) {
		t.Fatal("completed orders must not cancel")
	}
	if CanTransition(enums.OrderStatusCancelled, enums.OrderStatusCancelled) {
		t.Fatal("cancelled is terminal")
	}
}

func TestExceptionBranchRecovers(t *testing.T) {
	if !CanTransition(enums.OrderStatusShipped, enums.OrderStatusCustomsHold) {
		t.Fatal("shipped should reach customs_hold")
	}
	if !CanTransition(enums.OrderStatusCustomsHold, enums.OrderStatusDelivered) {
		t.Fatal("customs_hold should recover to delivered")
	}
	if !CanTransition(enums.OrderStatusDelayed, enums.OrderStatusShipped) {
		t.Fatal("delayed should recover to shipped")
	}
}

func TestAssertTransitionErrors(t *testing.T) {
	if err := assertTransition(enums.OrderStatusPending, enums.OrderStatusPending); err != nil {
		t.Fatalf("same-status transition should be a no-op, got %v", err)
	}

	err := assertTransition(enums.OrderStatusDelivered, enums.OrderStatusProcessing)
	if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}

	err = assertTransition(enums.OrderStatusPending, enums.OrderStatus("bogus"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for unknown status, got %v", err)
	}
}
