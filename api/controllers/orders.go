package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lucasmarchena/partsmarket-backend/api/responses"
	"github.com/lucasmarchena/partsmarket-backend/api/validators"
	internalorders "github.com/lucasmarchena/partsmarket-backend/internal/orders"
	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
	"github.com/lucasmarchena/partsmarket-backend/pkg/types"
)

type createOrderItemRequest struct {
	PartID         *string `json:"part_id,omitempty" validate:"omitempty,uuid4"`
	Name           string  `json:"name" validate:"required,max=255"`
	SKU            *string `json:"sku,omitempty"`
	Manufacturer   *string `json:"manufacturer,omitempty"`
	UnitPriceCents int     `json:"unit_price_cents" validate:"required,min=1"`
	Qty            int     `json:"qty" validate:"required,min=1"`
}

type createOrderRequest struct {
	PaymentMethod   string                   `json:"payment_method" validate:"required"`
	Items           []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingCents   int                      `json:"shipping_cents" validate:"min=0"`
	ShippingAddress *types.ShippingAddress   `json:"shipping_address,omitempty"`
	Notes           *string                  `json:"notes,omitempty"`
}

// CreateOrder opens a new order for the authenticated customer.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method"))
			return
		}

		items := make([]internalorders.ItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			input := internalorders.ItemInput{
				Name:           item.Name,
				SKU:            item.SKU,
				Manufacturer:   item.Manufacturer,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
			}
			if item.PartID != nil {
				partID, parseErr := uuid.Parse(*item.PartID)
				if parseErr != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid part_id"))
					return
				}
				input.PartID = &partID
			}
			items = append(items, input)
		}

		order, err := svc.Create(r.Context(), internalorders.CreateInput{
			CustomerID:      actor.UserID,
			PaymentMethod:   method,
			Items:           items,
			ShippingCents:   payload.ShippingCents,
			ShippingAddress: payload.ShippingAddress,
			Notes:           payload.Notes,
			ActorRole:       string(actor.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders pages the caller's own orders. Customers see orders they
// placed; partners see orders assigned to them.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var list *internalorders.List
		switch actor.Role {
		case enums.ActorRoleCustomer:
			list, err = svc.ListForCustomer(r.Context(), actor.UserID, params, filters)
		case enums.ActorRolePartner:
			list, err = svc.ListForPartner(r.Context(), actor.UserID, params, filters)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "unsupported role for order list"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// OrderDetail returns one order after the service's ownership check.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

		// The path accepts either the order id or the human-facing
		// order number (PM-...).
		raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required"))
			return
		}

		var order *models.Order
		if orderID, parseErr := uuid.Parse(raw); parseErr == nil {
			order, err = svc.GetByID(r.Context(), orderID, actor)
		} else {
			order, err = svc.GetByOrderNumber(r.Context(), raw, actor)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CancelOrder cancels the caller's order, refunding wallet payments.
func CancelOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
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

type cancelOrderRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func buildPageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func buildOrderFilters(r *http.Request) (internalorders.Filters, error) {
	var filters internalorders.Filters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status %q", raw))
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid payment_status %q", raw))
		}
		filters.PaymentStatus = &status
	}

	dateFrom, err := parseDateParam(r.URL.Query().Get("date_from"), "date_from")
	if err != nil {
		return filters, err
	}
	filters.DateFrom = dateFrom

	dateTo, err := parseDateParam(r.URL.Query().Get("date_to"), "date_to")
	if err != nil {
		return filters, err
	}
	filters.DateTo = dateTo

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		filters.Query = q
	}

	return filters, nil
}

func parseDateParam(value, field string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", field))
		}
	}
	return &t, nil
}
