package renewals

import (
	"time"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
)

// ComputeExpiry derives the post-charge expiry instant and status from the
// plan duration. Pure: the caller supplies now, so eligibility and the ledger
// write always agree on the clock.
func ComputeExpiry(durationDays int, now time.Time) (time.Time, enums.SubscriptionStatus) {
	expiry := now.Add(time.Duration(durationDays) * 24 * time.Hour)
	if expiry.After(now) {
		return expiry, enums.SubscriptionStatusActive
	}
	return expiry, enums.SubscriptionStatusExpired
}

// StatusAt evaluates what the subscription status is at the given instant.
// Cancellation is terminal; otherwise the recorded expiry decides. A missing
// expiry counts as lapsed, which covers accounts that never completed a first
// charge.
func StatusAt(status enums.SubscriptionStatus, expiry *time.Time, now time.Time) enums.SubscriptionStatus {
	if status == enums.SubscriptionStatusCancelled {
		return enums.SubscriptionStatusCancelled
	}
	if expiry == nil {
		if status == enums.SubscriptionStatusPending {
			return enums.SubscriptionStatusPending
		}
		return enums.SubscriptionStatusExpired
	}
	if expiry.After(now) {
		return enums.SubscriptionStatusActive
	}
	return enums.SubscriptionStatusExpired
}
