package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kdprince200-netizen/equiherds-sub003/api/responses"
	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	pkgerrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
)

type paymentView struct {
	PaymentID   string    `json:"payment_id"`
	Date        time.Time `json:"date"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
}

type accountBillingResponse struct {
	Account  *accountView  `json:"account"`
	Payments []paymentView `json:"payments"`
}

// AccountBilling returns the account's subscription state and payment history.
func AccountBilling(svc renewals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "renewal service unavailable"))
			return
		}

		accountID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "account id must be a valid uuid"))
			return
		}

		account, err := svc.Account(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payments := make([]paymentView, 0, len(account.Payments))
		for _, record := range account.Payments {
			payments = append(payments, paymentView{
				PaymentID:   record.PaymentID,
				Date:        record.Date,
				AmountCents: record.AmountCents,
				Currency:    record.Currency,
				Status:      string(record.Status),
			})
		}

		responses.WriteSuccess(w, accountBillingResponse{
			Account:  newAccountView(account),
			Payments: payments,
		})
	}
}
