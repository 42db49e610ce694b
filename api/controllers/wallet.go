package controllers

import (
	"net/http"

	"github.com/lucasmarchena/partsmarket-backend/api/responses"
	"github.com/lucasmarchena/partsmarket-backend/api/validators"
	"github.com/lucasmarchena/partsmarket-backend/internal/wallet"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
)

// WalletBalance returns the caller's current balance.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetBalance(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, balance)
	}
}

// WalletTransactions pages the caller's ledger entries, newest first.
func WalletTransactions(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
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

		list, err := svc.ListTransactions(r.Context(), actor.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type walletRequest struct {
	AmountCents int     `json:"amount_cents" validate:"required,min=1"`
	Reference   *string `json:"reference,omitempty" validate:"omitempty,max=255"`
	Note        *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// WalletDeposit opens a pending deposit for admin review. The balance does
// not move until the deposit is confirmed.
func WalletDeposit(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return walletRequestHandler(logg, func(r *http.Request, input wallet.RequestInput) (any, error) {
		return svc.RequestDeposit(r.Context(), input)
	}, func() bool { return svc == nil })
}

// WalletWithdraw opens a pending withdrawal for admin review.
func WalletWithdraw(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return walletRequestHandler(logg, func(r *http.Request, input wallet.RequestInput) (any, error) {
		return svc.RequestWithdrawal(r.Context(), input)
	}, func() bool { return svc == nil })
}

func walletRequestHandler(logg *logger.Logger, apply func(*http.Request, wallet.RequestInput) (any, error), unavailable func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload walletRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := apply(r, wallet.RequestInput{
			UserID:      actor.UserID,
			AmountCents: payload.AmountCents,
			Reference:   payload.Reference,
			Note:        payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
