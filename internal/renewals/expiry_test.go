package renewals

import (
	"testing"
	"time"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
)

func TestComputeExpiryAdvancesByPlanDuration(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	expiry, status := ComputeExpiry(30, now)
	if want := now.Add(30 * 24 * time.Hour); !expiry.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, expiry)
	}
	if status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active, got %s", status)
	}
}

func TestComputeExpiryZeroDurationIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	expiry, status := ComputeExpiry(0, now)
	if !expiry.Equal(now) {
		t.Fatalf("expected expiry %v, got %v", now, expiry)
	}
	if status != enums.SubscriptionStatusExpired {
		t.Fatalf("expected expired, got %s", status)
	}
}

func TestComputeExpiryIsPure(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	firstExpiry, firstStatus := ComputeExpiry(14, now)
	secondExpiry, secondStatus := ComputeExpiry(14, now)
	if !firstExpiry.Equal(secondExpiry) || firstStatus != secondStatus {
		t.Fatalf("repeated calls diverged: %v/%s vs %v/%s", firstExpiry, firstStatus, secondExpiry, secondStatus)
	}
}

func TestStatusAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name   string
		status enums.SubscriptionStatus
		expiry *time.Time
		want   enums.SubscriptionStatus
	}{
		{"active with future expiry", enums.SubscriptionStatusActive, &future, enums.SubscriptionStatusActive},
		{"active with past expiry", enums.SubscriptionStatusActive, &past, enums.SubscriptionStatusExpired},
		{"expiry exactly now", enums.SubscriptionStatusActive, &now, enums.SubscriptionStatusExpired},
		{"active with no expiry", enums.SubscriptionStatusActive, nil, enums.SubscriptionStatusExpired},
		{"pending with no expiry", enums.SubscriptionStatusPending, nil, enums.SubscriptionStatusPending},
		{"cancelled stays cancelled", enums.SubscriptionStatusCancelled, &past, enums.SubscriptionStatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusAt(tc.status, tc.expiry, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
