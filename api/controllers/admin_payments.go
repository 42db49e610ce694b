package controllers

import (
	"net/http"

	"github.com/lucasmarchena/partsmarket-backend/api/responses"
	"github.com/lucasmarchena/partsmarket-backend/api/validators"
	"github.com/lucasmarchena/partsmarket-backend/internal/payments"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
)

// AdminPendingPayments lists manual payments awaiting review.
func AdminPendingPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListPending(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"payments": records})
	}
}

// AdminOrderPayments lists every payment attempt recorded for an order.
func AdminOrderPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListForOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"payments": records})
	}
}

// AdminVerifyPayment confirms a pending manual payment and settles the order.
func AdminVerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return paymentReviewHandler(logg, func(r *http.Request, input payments.ReviewInput) (any, error) {
		return svc.Verify(r.Context(), input)
	}, func() bool { return svc == nil })
}

// AdminRejectPayment declines a pending manual payment and reopens the order.
func AdminRejectPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return paymentReviewHandler(logg, func(r *http.Request, input payments.ReviewInput) (any, error) {
		return svc.Reject(r.Context(), input)
	}, func() bool { return svc == nil })
}

// AdminRefreshPayment re-queries the card gateway for a payment that timed
// out mid-capture.
func AdminRefreshPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		paymentID, err := parseUUIDParam(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.RefreshCardPayment(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

type paymentReviewRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func paymentReviewHandler(logg *logger.Logger, apply func(*http.Request, payments.ReviewInput) (any, error), unavailable func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentID, err := parseUUIDParam(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentReviewRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		record, err := apply(r, payments.ReviewInput{
			PaymentID: paymentID,
			AdminID:   actor.UserID,
			Reason:    payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}
