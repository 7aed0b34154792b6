package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	pkgerrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/types"
)

type stubRenewalService struct {
	outcome *renewals.Outcome
	account *models.Account
	err     error

	renewCalls int
	lastID     uuid.UUID
	lastNow    time.Time
}

func (s *stubRenewalService) Renew(_ context.Context, accountID uuid.UUID, now time.Time) (*renewals.Outcome, error) {
	s.renewCalls++
	s.lastID = accountID
	s.lastNow = now
	if s.err != nil {
		return nil, s.err
	}
	return s.outcome, nil
}

func (s *stubRenewalService) Account(_ context.Context, accountID uuid.UUID) (*models.Account, error) {
	s.lastID = accountID
	if s.err != nil {
		return nil, s.err
	}
	return s.account, nil
}

func sellerAccount(id uuid.UUID) *models.Account {
	expiry := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	return &models.Account{
		ID:                       id,
		Name:                     "Hill Farm Stables",
		Email:                    "owner@hillfarm.test",
		Type:                     enums.AccountTypeSeller,
		StripeCustomerID:         "cus_123",
		DefaultPaymentMethodID:   "pm_123",
		SubscriptionName:         "seller-pro",
		SubscriptionPrice:        49.99,
		SubscriptionDurationDays: 30,
		SubscriptionExpiry:       &expiry,
		SubscriptionStatus:       enums.SubscriptionStatusActive,
	}
}

func postRenewal(t *testing.T, svc renewals.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/renewals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	RenewSubscription(svc, nil)(w, req)
	return w
}

func TestRenewSubscriptionSuccess(t *testing.T) {
	accountID := uuid.New()
	svc := &stubRenewalService{
		outcome: &renewals.Outcome{
			PaymentID: "pi_123",
			Account:   sellerAccount(accountID),
		},
	}

	w := postRenewal(t, svc, `{"account_id":"`+accountID.String()+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d: %s", w.Code, w.Body.String())
	}
	if svc.renewCalls != 1 {
		t.Fatalf("expected 1 renew call, got %d", svc.renewCalls)
	}
	if svc.lastID != accountID {
		t.Fatalf("expected renew for %s, got %s", accountID, svc.lastID)
	}
	if !svc.lastNow.IsZero() {
		t.Fatalf("handler should let the service pick the clock, got %v", svc.lastNow)
	}

	var body struct {
		Data renewalResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Data.Success || body.Data.PaymentID != "pi_123" {
		t.Fatalf("unexpected payload %+v", body.Data)
	}
	if body.Data.Account == nil || !body.Data.Account.HasPaymentMethod {
		t.Fatalf("expected account view with payment method flag, got %+v", body.Data.Account)
	}
}

func TestRenewSubscriptionSuppressed(t *testing.T) {
	accountID := uuid.New()
	svc := &stubRenewalService{
		outcome: &renewals.Outcome{
			PaymentID:  "pi_prior",
			Suppressed: true,
			Account:    sellerAccount(accountID),
		},
	}

	w := postRenewal(t, svc, `{"account_id":"`+accountID.String()+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}

	var body struct {
		Data renewalResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Data.Suppressed || body.Data.PaymentID != "pi_prior" {
		t.Fatalf("unexpected payload %+v", body.Data)
	}
}

func TestRenewSubscriptionRejectsBadBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing account id", `{}`},
		{"malformed uuid", `{"account_id":"not-a-uuid"}`},
		{"unknown field", `{"account_id":"` + uuid.NewString() + `","extra":true}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubRenewalService{}
			w := postRenewal(t, svc, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400 but got %d: %s", w.Code, w.Body.String())
			}
			if svc.renewCalls != 0 {
				t.Fatalf("service should not be called for invalid input")
			}
		})
	}
}

func TestRenewSubscriptionMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"lock contention", pkgerrors.New(pkgerrors.CodeConflict, "a renewal for this account is already in progress"), http.StatusConflict},
		{"needs action", pkgerrors.New(pkgerrors.CodePaymentRequired, "payment requires further action"), http.StatusPaymentRequired},
		{"not lapsed", pkgerrors.New(pkgerrors.CodeStateConflict, "subscription has not lapsed"), http.StatusUnprocessableEntity},
		{"timeout", pkgerrors.New(pkgerrors.CodeTimeout, "gateway charge exceeded 10s deadline"), http.StatusGatewayTimeout},
		{"store outage", pkgerrors.New(pkgerrors.CodeDependency, "persisting payment ledger"), http.StatusServiceUnavailable},
		{"missing account", pkgerrors.New(pkgerrors.CodeNotFound, "account not found"), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubRenewalService{err: tc.err}
			w := postRenewal(t, svc, `{"account_id":"`+uuid.NewString()+`"}`)
			if w.Code != tc.want {
				t.Fatalf("expected status %d but got %d: %s", tc.want, w.Code, w.Body.String())
			}

			var body types.ErrorEnvelope
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error envelope: %v", err)
			}
			if body.Error.Code == "" {
				t.Fatalf("expected an error code in the payload")
			}
		})
	}
}
