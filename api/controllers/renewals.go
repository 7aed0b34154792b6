package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kdprince200-netizen/equiherds-sub003/api/responses"
	"github.com/kdprince200-netizen/equiherds-sub003/api/validators"
	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	pkgerrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
)

type renewalRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
}

type subscriptionView struct {
	Name         string     `json:"name"`
	Price        float64    `json:"price"`
	DurationDays int        `json:"duration_days"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	Status       string     `json:"status"`
}

type accountView struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Type             string           `json:"type"`
	HasPaymentMethod bool             `json:"has_payment_method"`
	Subscription     subscriptionView `json:"subscription"`
}

type renewalResponse struct {
	Success    bool         `json:"success"`
	PaymentID  string       `json:"payment_id,omitempty"`
	Suppressed bool         `json:"suppressed"`
	Account    *accountView `json:"account,omitempty"`
}

func newAccountView(account *models.Account) *accountView {
	if account == nil {
		return nil
	}
	return &accountView{
		ID:               account.ID,
		Name:             account.Name,
		Email:            account.Email,
		Type:             string(account.Type),
		HasPaymentMethod: account.DefaultPaymentMethodID != "",
		Subscription: subscriptionView{
			Name:         account.SubscriptionName,
			Price:        account.SubscriptionPrice,
			DurationDays: account.SubscriptionDurationDays,
			Expiry:       account.SubscriptionExpiry,
			Status:       string(account.SubscriptionStatus),
		},
	}
}

// RenewSubscription triggers one renewal attempt for the requested account.
func RenewSubscription(svc renewals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "renewal service unavailable"))
			return
		}

		var payload renewalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accountID, err := uuid.Parse(payload.AccountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "account_id must be a valid uuid"))
			return
		}

		outcome, err := svc.Renew(r.Context(), accountID, time.Time{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, renewalResponse{
			Success:    true,
			PaymentID:  outcome.PaymentID,
			Suppressed: outcome.Suppressed,
			Account:    newAccountView(outcome.Account),
		})
	}
}
