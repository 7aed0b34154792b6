package renewals

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	pkgstripe "github.com/kdprince200-netizen/equiherds-sub003/pkg/stripe"
)

// StripeChargeClient exposes the subset of Stripe operations required by the charge orchestrator.
type StripeChargeClient interface {
	CreateAndConfirm(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the renewal service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeChargeClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreateAndConfirm(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.New(params)
}
