package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
)

// SubscriptionSnapshot freezes the plan terms in effect when a charge was made.
// Once written to the ledger it is never mutated.
type SubscriptionSnapshot struct {
	Name         string                   `json:"name"`
	Price        float64                  `json:"price"`
	DurationDays int                      `json:"duration_days"`
	Status       enums.SubscriptionStatus `json:"status"`
	Expiry       *time.Time               `json:"expiry,omitempty"`
}

// PaymentRecord is one entry in an account's append-only payment ledger.
// PaymentID is the gateway-assigned identifier and doubles as the
// idempotency reference for the charge.
type PaymentRecord struct {
	PaymentID     string               `json:"payment_id" validate:"required"`
	Date          time.Time            `json:"date" validate:"required"`
	AmountCents   int64                `json:"amount_cents" validate:"gt=0"`
	Currency      string               `json:"currency" validate:"required"`
	Status        enums.PaymentStatus  `json:"status" validate:"required"`
	AccountID     string               `json:"account_id" validate:"required"`
	CustomerName  string               `json:"customer_name,omitempty"`
	CustomerEmail string               `json:"customer_email,omitempty"`
	Snapshot      SubscriptionSnapshot `json:"subscription_snapshot"`
}

// PaymentRecords persists the ledger as JSONB, insertion order preserved.
type PaymentRecords []PaymentRecord

// Value serializes the ledger to JSON. A string keeps the column text-typed
// across postgres and the sqlite test driver.
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes JSONB into the ledger slice.
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded PaymentRecords
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*p = decoded
	return nil
}

// LatestByStatus returns the most recent record carrying the given status.
// The ledger is append-only, so the last match is the newest.
func (p PaymentRecords) LatestByStatus(status enums.PaymentStatus) *PaymentRecord {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Status == status {
			record := p[i]
			return &record
		}
	}
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
