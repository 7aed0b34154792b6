package renewals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	apperrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/types"
)

type accountSaver interface {
	Save(ctx context.Context, account *models.Account) error
}

// LedgerWriter appends a payment record and the post-charge subscription state
// to the account, then persists the whole row in one write.
type LedgerWriter struct {
	store    accountSaver
	validate *validator.Validate
}

// NewLedgerWriter binds the writer to the account store.
func NewLedgerWriter(store accountSaver) (*LedgerWriter, error) {
	if store == nil {
		return nil, errors.New("account store required")
	}
	return &LedgerWriter{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Write appends record, advances the subscription expiry and status, and
// saves the account. If the ledger fails validation (legacy rows may carry
// entries missing the owning account id), one repair pass patches the missing
// fields and the save is retried once; a second failure surfaces.
func (w *LedgerWriter) Write(ctx context.Context, account *models.Account, record types.PaymentRecord, newExpiry time.Time, newStatus enums.SubscriptionStatus) error {
	if account == nil {
		return apperrors.New(apperrors.CodeValidation, "account is required")
	}

	account.Payments = append(account.Payments, record)
	account.SubscriptionExpiry = &newExpiry
	account.SubscriptionStatus = newStatus

	if err := w.validateLedger(account); err != nil {
		if RepairLedger(account) == 0 {
			return err
		}
		if err := w.validateLedger(account); err != nil {
			return err
		}
	}

	if err := w.store.Save(ctx, account); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "persisting payment ledger")
	}
	return nil
}

func (w *LedgerWriter) validateLedger(account *models.Account) error {
	for i := range account.Payments {
		if err := w.validate.Struct(&account.Payments[i]); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err,
				fmt.Sprintf("ledger entry %d failed validation", i))
		}
	}
	return nil
}

// RepairLedger backfills the owning account id and customer display fields on
// ledger entries that predate those columns. Returns how many entries changed.
// Steady-state writes produce complete records; this exists for the migration
// job and the writer's single retry.
func RepairLedger(account *models.Account) int {
	if account == nil {
		return 0
	}
	patched := 0
	for i := range account.Payments {
		entry := &account.Payments[i]
		changed := false
		if entry.AccountID == "" {
			entry.AccountID = account.ID.String()
			changed = true
		}
		if entry.CustomerName == "" && account.Name != "" {
			entry.CustomerName = account.Name
			changed = true
		}
		if entry.CustomerEmail == "" && account.Email != "" {
			entry.CustomerEmail = account.Email
			changed = true
		}
		if changed {
			patched++
		}
	}
	return patched
}
