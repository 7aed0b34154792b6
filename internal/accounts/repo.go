package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
)

// Repository exposes account persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID retrieves an account by its identifier.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Save persists the full account row, ledger included. The processing flag is
// excluded; it moves only through the lock methods below.
func (r *Repository) Save(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Omit("is_processing_payment").
		Save(account).Error
}

// AcquireRenewalLock flips is_processing_payment from false to true in a single
// conditional update. Returns false when another attempt already holds the lock
// or the account does not exist.
func (r *Repository) AcquireRenewalLock(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND is_processing_payment = ?", id, false).
		Updates(map[string]any{
			"is_processing_payment": true,
			"updated_at":            time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseRenewalLock clears the processing flag unconditionally.
func (r *Repository) ReleaseRenewalLock(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_processing_payment": false,
			"updated_at":            time.Now().UTC(),
		}).Error
}

// ListLapsedSellers returns seller accounts whose active subscription has
// lapsed as of now and that are not already mid-renewal.
func (r *Repository) ListLapsedSellers(ctx context.Context, now time.Time, limit int) ([]models.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Account
	err := r.db.WithContext(ctx).
		Where("type = ?", enums.AccountTypeSeller).
		Where("subscription_status = ?", enums.SubscriptionStatusActive).
		Where("subscription_expiry IS NOT NULL AND subscription_expiry <= ?", now).
		Where("is_processing_payment = ?", false).
		Order("subscription_expiry").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListWithLedgers pages through accounts carrying a non-empty payment ledger.
func (r *Repository) ListWithLedgers(ctx context.Context, offset, limit int) ([]models.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Account
	err := r.db.WithContext(ctx).
		Where("payments IS NOT NULL AND payments <> '[]'").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
