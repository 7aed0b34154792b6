package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/types"
)

// Account is a marketplace user. Sellers carry a paid subscription; the full
// payment ledger is embedded on the row and always read-modified-written as a
// whole, mirroring the single-document semantics the renewal engine relies on.
type Account struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string            `gorm:"column:name;not null"`
	Email     string            `gorm:"column:email;not null;unique"`
	Type      enums.AccountType `gorm:"column:type;not null;default:'buyer'"`

	StripeCustomerID       string `gorm:"column:stripe_customer_id"`
	DefaultPaymentMethodID string `gorm:"column:default_payment_method_id"`

	SubscriptionName         string                   `gorm:"column:subscription_name"`
	SubscriptionPrice        float64                  `gorm:"column:subscription_price"`
	SubscriptionDurationDays int                      `gorm:"column:subscription_duration_days"`
	SubscriptionExpiry       *time.Time               `gorm:"column:subscription_expiry"`
	SubscriptionStatus       enums.SubscriptionStatus `gorm:"column:subscription_status;not null;default:'pending'"`

	// IsProcessingPayment is the renewal mutex. It is flipped only through
	// the accounts repository's conditional update, never by a plain Save.
	IsProcessingPayment bool `gorm:"column:is_processing_payment;not null;default:false"`

	Payments types.PaymentRecords `gorm:"column:payments;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
