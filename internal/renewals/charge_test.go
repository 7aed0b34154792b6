package renewals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	apperrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
)

type stubGateway struct {
	calls  int
	params *stripe.PaymentIntentParams
	resp   *stripe.PaymentIntent
	err    error
	delay  time.Duration
}

func (g *stubGateway) CreateAndConfirm(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	g.calls++
	g.params = params
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.resp, nil
}

func TestAmountMinorUnits(t *testing.T) {
	cases := []struct {
		price float64
		want  int64
	}{
		{49.99, 4999},
		{10, 1000},
		{0.005, 1},
		{19.999, 2000},
	}
	for _, tc := range cases {
		if got := AmountMinorUnits(tc.price); got != tc.want {
			t.Fatalf("AmountMinorUnits(%v) = %d, want %d", tc.price, got, tc.want)
		}
	}
}

func TestChargeSucceeds(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	account := lapsedSeller(now)
	gateway := &stubGateway{resp: &stripe.PaymentIntent{
		ID:     "pi_ok",
		Status: stripe.PaymentIntentStatusSucceeded,
	}}
	orch, err := NewChargeOrchestrator(gateway, "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := orch.Charge(context.Background(), account, 4999)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.PaymentID != "pi_ok" || result.Status != enums.PaymentStatusSucceeded {
		t.Fatalf("unexpected result %+v", result)
	}

	params := gateway.params
	if params == nil || params.Amount == nil || *params.Amount != 4999 {
		t.Fatalf("expected amount 4999 on gateway params: %+v", params)
	}
	if *params.Currency != "usd" || *params.Customer != account.StripeCustomerID {
		t.Fatalf("unexpected gateway params %+v", params)
	}
	if params.Confirm == nil || !*params.Confirm || params.OffSession == nil || !*params.OffSession {
		t.Fatal("charge must be created as a confirmed off-session intent")
	}
	if params.Metadata["purpose"] != metadataPurposeRenewal || params.Metadata["account_id"] != account.ID.String() {
		t.Fatalf("missing renewal metadata: %+v", params.Metadata)
	}
}

func TestChargeNonSucceededStatusNeedsAction(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gateway := &stubGateway{resp: &stripe.PaymentIntent{
		ID:     "pi_action",
		Status: stripe.PaymentIntentStatusRequiresAction,
	}}
	orch, _ := NewChargeOrchestrator(gateway, "usd")

	_, err := orch.Charge(context.Background(), lapsedSeller(now), 4999)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodePaymentRequired {
		t.Fatalf("expected payment-required error, got %v", err)
	}
	details, _ := appErr.Details().(map[string]any)
	if details["payment_intent_id"] != "pi_action" {
		t.Fatalf("expected intent id in details, got %#v", details)
	}
}

func TestChargeCardDecline(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gateway := &stubGateway{err: &stripe.Error{
		Type: stripe.ErrorTypeCard,
		Code: stripe.ErrorCodeCardDeclined,
	}}
	orch, _ := NewChargeOrchestrator(gateway, "usd")

	_, err := orch.Charge(context.Background(), lapsedSeller(now), 4999)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodePaymentRequired {
		t.Fatalf("expected payment-required error, got %v", err)
	}
}

func TestChargeGatewayOutage(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gateway := &stubGateway{err: errors.New("connection reset")}
	orch, _ := NewChargeOrchestrator(gateway, "usd")

	_, err := orch.Charge(context.Background(), lapsedSeller(now), 4999)
	appErr := apperrors.As(err)
	if appErr == nil || appErr.Code() != apperrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestChargeRejectsInvalidInput(t *testing.T) {
	orch, _ := NewChargeOrchestrator(&stubGateway{}, "usd")

	if _, err := orch.Charge(context.Background(), nil, 4999); apperrors.As(err) == nil {
		t.Fatalf("expected validation error for nil account, got %v", err)
	}
	account := lapsedSeller(time.Now())
	account.ID = uuid.New()
	if _, err := orch.Charge(context.Background(), account, 0); apperrors.As(err) == nil {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
}
