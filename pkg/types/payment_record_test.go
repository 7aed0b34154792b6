package types

import (
	"testing"
	"time"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
)

func TestPaymentRecordsValueAndScan(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ledger := PaymentRecords{
		{
			PaymentID:   "pi_123",
			Date:        now,
			AmountCents: 4999,
			Currency:    "usd",
			Status:      enums.PaymentStatusSucceeded,
			AccountID:   "acct-1",
			Snapshot: SubscriptionSnapshot{
				Name:         "Stable Pro",
				Price:        49.99,
				DurationDays: 30,
				Status:       enums.SubscriptionStatusActive,
			},
		},
	}

	val, err := ledger.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var decoded PaymentRecords
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(decoded))
	}
	got := decoded[0]
	if got.PaymentID != "pi_123" || got.AmountCents != 4999 {
		t.Fatalf("record mismatch: %+v", got)
	}
	if !got.Date.Equal(now) {
		t.Fatalf("expected date %v, got %v", now, got.Date)
	}
	if got.Snapshot.DurationDays != 30 {
		t.Fatalf("snapshot not preserved: %+v", got.Snapshot)
	}
}

func TestPaymentRecordsScanNil(t *testing.T) {
	var records PaymentRecords
	if err := records.Scan(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records != nil {
		t.Fatalf("expected nil slice, got %#v", records)
	}
}

func TestLatestByStatusPicksNewest(t *testing.T) {
	ledger := PaymentRecords{
		{PaymentID: "pi_old", Status: enums.PaymentStatusSucceeded},
		{PaymentID: "pi_failed", Status: enums.PaymentStatusFailed},
		{PaymentID: "pi_new", Status: enums.PaymentStatusSucceeded},
	}

	latest := ledger.LatestByStatus(enums.PaymentStatusSucceeded)
	if latest == nil || latest.PaymentID != "pi_new" {
		t.Fatalf("expected pi_new, got %+v", latest)
	}
	if ledger.LatestByStatus(enums.PaymentStatusPending) != nil {
		t.Fatalf("expected no pending record")
	}
}
