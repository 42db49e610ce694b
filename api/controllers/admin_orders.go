package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/api/responses"
	"github.com/lucasmarchena/partsmarket-backend/api/validators"
	internalorders "github.com/lucasmarchena/partsmarket-backend/internal/orders"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
)

// AdminListOrders pages every order in the system.
func AdminListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := buildPageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAll(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminOrderDetail returns any order by id.
func AdminOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		order, err := svc.GetByID(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminConfirmOrder moves a waiting order into the confirmed state.
func AdminConfirmOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return statusHandler(svc, logg, func(r *http.Request, input internalorders.StatusInput) error {
		return svc.Confirm(r.Context(), input)
	})
}

// AdminCompleteOrder closes out a delivered order.
func AdminCompleteOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return statusHandler(svc, logg, func(r *http.Request, input internalorders.StatusInput) error {
		return svc.Complete(r.Context(), input)
	})
}

// AdminShipOrder records a shipment on behalf of a partner.
func AdminShipOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return shipOrderHandler(svc, logg)
}

// AdminDeliverOrder marks a shipped order as delivered.
func AdminDeliverOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return deliverOrderHandler(svc, logg)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminUpdateOrderStatus applies an explicit forward transition.
func AdminUpdateOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		err = svc.UpdateStatus(r.Context(), internalorders.StatusInput{
			OrderID:     orderID,
			Status:      status,
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

type assignPartnerRequest struct {
	PartnerID string `json:"partner_id" validate:"required,uuid4"`
}

// AdminAssignPartner hands an open order to a fulfilment partner.
func AdminAssignPartner(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload assignPartnerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partnerID, err := uuid.Parse(payload.PartnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid partner_id"))
			return
		}

		err = svc.AssignPartner(r.Context(), internalorders.AssignInput{
			OrderID:     orderID,
			PartnerID:   partnerID,
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

// AdminCancelOrder cancels any order on behalf of support.
func AdminCancelOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload cancelOrderRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		err = svc.Cancel(r.Context(), internalorders.CancelInput{
			OrderID:     orderID,
			Reason:      payload.Reason,
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

// AdminDeleteOrder removes an order entirely. The actor is audited through
// the emitted event.
func AdminDeleteOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		err = svc.Delete(r.Context(), internalorders.DeleteInput{
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

func statusHandler(svc internalorders.Service, logg *logger.Logger, apply func(*http.Request, internalorders.StatusInput) error) http.HandlerFunc {
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

		err = apply(r, internalorders.StatusInput{
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
