package renewals

import (
	"time"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	apperrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
)

// Rejection reasons reported by CheckEligibility.
const (
	ReasonNotSeller       = "not_seller"
	ReasonNoCustomer      = "no_gateway_customer"
	ReasonNoPaymentMethod = "no_payment_method"
	ReasonNoPlan          = "no_subscription_plan"
	ReasonCancelled       = "subscription_cancelled"
	ReasonNotLapsed       = "subscription_not_lapsed"
)

// CheckEligibility decides whether a renewal attempt may proceed at all.
// It reads only the account snapshot: no lock is taken and the ledger is
// untouched. Returns nil when the account is chargeable.
func CheckEligibility(account *models.Account, now time.Time) error {
	if account == nil {
		return apperrors.New(apperrors.CodeValidation, "account is required")
	}
	if account.Type != enums.AccountTypeSeller {
		return rejection(apperrors.CodeValidation, "only seller accounts carry a paid subscription", ReasonNotSeller)
	}
	if account.StripeCustomerID == "" {
		return rejection(apperrors.CodeValidation, "no gateway customer on file", ReasonNoCustomer)
	}
	if account.DefaultPaymentMethodID == "" {
		return rejection(apperrors.CodeValidation, "no default payment method on file", ReasonNoPaymentMethod)
	}
	if account.SubscriptionPrice <= 0 || account.SubscriptionDurationDays <= 0 {
		return rejection(apperrors.CodeValidation, "subscription plan is not configured", ReasonNoPlan)
	}

	switch StatusAt(account.SubscriptionStatus, account.SubscriptionExpiry, now) {
	case enums.SubscriptionStatusCancelled:
		return rejection(apperrors.CodeStateConflict, "subscription is cancelled", ReasonCancelled)
	case enums.SubscriptionStatusExpired:
		return nil
	default:
		return rejection(apperrors.CodeStateConflict, "subscription has not lapsed", ReasonNotLapsed)
	}
}

func rejection(code apperrors.Code, message, reason string) error {
	return apperrors.New(code, message).WithDetails(map[string]any{"reason": reason})
}
