package renewals

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	apperrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
)

const metadataPurposeRenewal = "subscription_renewal"

// ChargeResult captures the gateway outcome the pipeline needs downstream.
type ChargeResult struct {
	PaymentID string
	Status    enums.PaymentStatus
}

// ChargeOrchestrator creates and confirms an off-session charge against the
// account's stored payment method and interprets the gateway's verdict.
type ChargeOrchestrator struct {
	gateway  StripeChargeClient
	currency string
}

// NewChargeOrchestrator binds the orchestrator to a gateway client and the
// configured charge currency.
func NewChargeOrchestrator(gateway StripeChargeClient, currency string) (*ChargeOrchestrator, error) {
	if gateway == nil {
		return nil, errors.New("gateway client required")
	}
	currency = strings.TrimSpace(strings.ToLower(currency))
	if currency == "" {
		return nil, errors.New("charge currency required")
	}
	return &ChargeOrchestrator{gateway: gateway, currency: currency}, nil
}

// Currency reports the ISO code charges are made in.
func (o *ChargeOrchestrator) Currency() string {
	return o.currency
}

// AmountMinorUnits converts a plan price in major units to the gateway's
// minor currency unit, rounding to the nearest integer.
func AmountMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Charge bills the account's default payment method off-session. Only a
// gateway status of succeeded advances the pipeline; every other terminal
// status surfaces as a payment-required rejection so the account holder can
// intervene. No automatic retry.
func (o *ChargeOrchestrator) Charge(ctx context.Context, account *models.Account, amountCents int64) (*ChargeResult, error) {
	if account == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "account is required")
	}
	if amountCents <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "charge amount must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(o.currency),
		Customer:      stripe.String(account.StripeCustomerID),
		PaymentMethod: stripe.String(account.DefaultPaymentMethodID),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.AddMetadata("purpose", metadataPurposeRenewal)
	params.AddMetadata("account_id", account.ID.String())
	if account.SubscriptionName != "" {
		params.AddMetadata("subscription_name", account.SubscriptionName)
	}

	intent, err := o.gateway.CreateAndConfirm(ctx, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			wrapped := apperrors.Wrap(apperrors.CodePaymentRequired, err, "card was declined")
			details := map[string]any{"decline_code": string(stripeErr.Code)}
			if stripeErr.PaymentIntent != nil {
				details["payment_intent_id"] = stripeErr.PaymentIntent.ID
			}
			return nil, wrapped.WithDetails(details)
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "gateway charge failed")
	}
	if intent == nil {
		return nil, apperrors.New(apperrors.CodeDependency, "gateway returned no payment intent")
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, apperrors.New(apperrors.CodePaymentRequired, "payment requires further action").
			WithDetails(map[string]any{
				"payment_intent_id": intent.ID,
				"intent_status":     string(intent.Status),
			})
	}

	return &ChargeResult{
		PaymentID: intent.ID,
		Status:    enums.PaymentStatusSucceeded,
	}, nil
}
