package controllers

import (
	"net/http"

	"github.com/lucasmarchena/partsmarket-backend/api/responses"
	"github.com/lucasmarchena/partsmarket-backend/api/validators"
	internalorders "github.com/lucasmarchena/partsmarket-backend/internal/orders"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
)

type shipOrderRequest struct {
	TrackingNumber string  `json:"tracking_number" validate:"required,max=100"`
	Carrier        *string `json:"carrier,omitempty" validate:"omitempty,max=100"`
}

// PartnerShipOrder records the shipment for an order the partner fulfils.
func PartnerShipOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return shipOrderHandler(svc, logg)
}

func shipOrderHandler(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload shipOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Ship(r.Context(), internalorders.ShipInput{
			OrderID:        orderID,
			TrackingNumber: payload.TrackingNumber,
			Carrier:        payload.Carrier,
			ActorUserID:    actor.UserID,
			ActorRole:      string(actor.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// PartnerDeliverOrder marks a shipped order as delivered.
func PartnerDeliverOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return deliverOrderHandler(svc, logg)
}

func deliverOrderHandler(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.MarkDelivered(r.Context(), internalorders.StatusInput{
			OrderID:     orderID,
			ActorUserID: actor.UserID,
			ActorRole:   string(actor.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
