package controllers

import (
	"net/http"

	"github.com/lucasmarchena/partsmarket-backend/api/responses"
	"github.com/lucasmarchena/partsmarket-backend/api/validators"
	"github.com/lucasmarchena/partsmarket-backend/internal/wallet"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/logger"
)

// AdminConfirmWalletTransaction settles a pending deposit or withdrawal,
// moving the balance.
func AdminConfirmWalletTransaction(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return walletReviewHandler(logg, func(r *http.Request, input wallet.ReviewInput) (any, error) {
		return svc.ConfirmTransaction(r.Context(), input)
	}, func() bool { return svc == nil })
}

// AdminRejectWalletTransaction declines a pending transaction without
// touching the balance.
func AdminRejectWalletTransaction(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return walletReviewHandler(logg, func(r *http.Request, input wallet.ReviewInput) (any, error) {
		return svc.RejectTransaction(r.Context(), input)
	}, func() bool { return svc == nil })
}

// AdminReplayWallet recomputes a user's balance from the completed ledger
// entries, for reconciliation against the stored balance.
func AdminReplayWallet(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		userID, err := parseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		replayed, err := svc.Replay(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetBalance(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"replayed_cents": replayed,
			"stored_cents":   balance.BalanceCents,
			"in_sync":        replayed == balance.BalanceCents,
		})
	}
}

type walletReviewRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func walletReviewHandler(logg *logger.Logger, apply func(*http.Request, wallet.ReviewInput) (any, error), unavailable func() bool) http.HandlerFunc {
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

		transactionID, err := parseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload walletReviewRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		entry, err := apply(r, wallet.ReviewInput{
			TransactionID: transactionID,
			AdminID:       actor.UserID,
			Reason:        payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}
