package controllers

import (
	"net/http"

	"github.com/lucasmarchena/partsmarket-backend/api/responses"
	"github.com/lucasmarchena/partsmarket-backend/internal/reconcile"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
)

// AdminReconcileViews returns every projected order view together with the
// last event sequence the projection has applied.
func AdminReconcileViews(projection *reconcile.Projection, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if projection == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile projection unavailable"))
			return
		}

		views := projection.List()
		responses.WriteSuccess(w, map[string]any{
			"views":         views,
			"last_sequence": projection.LastSequence(),
		})
	}
}

// AdminReconcileView returns the projected view for a single order.
func AdminReconcileView(projection *reconcile.Projection, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if projection == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile projection unavailable"))
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, ok := projection.Get(orderID)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no projected view for order"))
			return
		}
		responses.WriteSuccess(w, view)
	}
}
