package orders

import (
	"fmt"

	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
)

// transitions is the forward lifecycle graph. Cancellation is handled
// separately: any non-terminal status may move to cancelled.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusWaitingConfirmation,
		enums.OrderStatusConfirmed,
	},
	enums.OrderStatusWaitingConfirmation: {
		enums.OrderStatusConfirmed,
	},
	enums.OrderStatusConfirmed: {
		enums.OrderStatusProcessing,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusShipped,
		enums.OrderStatusDelayed,
	},
	enums.OrderStatusShipped: {
		enums.OrderStatusDelivered,
		enums.OrderStatusDelayed,
		enums.OrderStatusCustomsHold,
		enums.OrderStatusDamaged,
		enums.OrderStatusLost,
	},
	enums.OrderStatusDelivered: {
		enums.OrderStatusCompleted,
	},
	enums.OrderStatusDelayed: {
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	},
	enums.OrderStatusCustomsHold: {
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	},
	enums.OrderStatusDamaged: {
		enums.OrderStatusDelivered,
	},
	enums.OrderStatusLost: {},
}

// CanTransition reports whether from may move directly to to.
func CanTransition(from, to enums.OrderStatus) bool {
	if to == enums.OrderStatusCancelled {
		return !from.IsTerminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func assertTransition(from, to enums.OrderStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", to))
	}
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", from, to))
	}
	return nil
}
