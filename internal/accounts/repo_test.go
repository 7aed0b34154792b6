package accounts

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/enums"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/types"
)

func setupAccountsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS accounts (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL DEFAULT 'buyer',
  stripe_customer_id TEXT NOT NULL DEFAULT '',
  default_payment_method_id TEXT NOT NULL DEFAULT '',
  subscription_name TEXT NOT NULL DEFAULT '',
  subscription_price REAL NOT NULL DEFAULT 0,
  subscription_duration_days INTEGER NOT NULL DEFAULT 0,
  subscription_expiry DATETIME,
  subscription_status TEXT NOT NULL DEFAULT 'pending',
  is_processing_payment INTEGER NOT NULL DEFAULT 0,
  payments TEXT NOT NULL DEFAULT '[]',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedSeller(t *testing.T, db *gorm.DB, expiry *time.Time, status enums.SubscriptionStatus) *models.Account {
	t.Helper()

	account := &models.Account{
		ID:                       uuid.New(),
		Name:                     "Hawthorne Stables",
		Email:                    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Type:                     enums.AccountTypeSeller,
		StripeCustomerID:         "cus_123",
		DefaultPaymentMethodID:   "pm_123",
		SubscriptionName:         "Seller Pro",
		SubscriptionPrice:        49.99,
		SubscriptionDurationDays: 30,
		SubscriptionExpiry:       expiry,
		SubscriptionStatus:       status,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func TestFindByIDReturnsAccount(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	expiry := time.Now().UTC().Add(24 * time.Hour)
	seeded := seedSeller(t, db, &expiry, enums.SubscriptionStatusActive)

	found, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, "Seller Pro", found.SubscriptionName)
	assert.InDelta(t, 49.99, found.SubscriptionPrice, 0.001)
}

func TestFindByIDMissingAccount(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAcquireRenewalLockIsExclusive(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	seeded := seedSeller(t, db, nil, enums.SubscriptionStatusActive)
	ctx := context.Background()

	acquired, err := repo.AcquireRenewalLock(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, acquired)

	again, err := repo.AcquireRenewalLock(ctx, seeded.ID)
	require.NoError(t, err)
	assert.False(t, again, "second acquire must lose the conditional update")

	require.NoError(t, repo.ReleaseRenewalLock(ctx, seeded.ID))

	reacquired, err := repo.AcquireRenewalLock(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, reacquired)
}

func TestAcquireRenewalLockUnknownAccount(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)

	acquired, err := repo.AcquireRenewalLock(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestSaveDoesNotTouchProcessingFlag(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	seeded := seedSeller(t, db, nil, enums.SubscriptionStatusActive)
	ctx := context.Background()

	acquired, err := repo.AcquireRenewalLock(ctx, seeded.ID)
	require.NoError(t, err)
	require.True(t, acquired)

	loaded, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)

	loaded.IsProcessingPayment = false // stale in-memory value
	loaded.SubscriptionStatus = enums.SubscriptionStatusActive
	loaded.Payments = types.PaymentRecords{{
		PaymentID:   "pi_1",
		Date:        time.Now().UTC(),
		AmountCents: 4999,
		Currency:    "usd",
		Status:      enums.PaymentStatusSucceeded,
		AccountID:   seeded.ID.String(),
	}}
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsProcessingPayment, "save must not release the lock")
	require.Len(t, reloaded.Payments, 1)
	assert.Equal(t, "pi_1", reloaded.Payments[0].PaymentID)
}

func TestListLapsedSellers(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	future := now.Add(48 * time.Hour)

	lapsed := seedSeller(t, db, &past, enums.SubscriptionStatusActive)
	seedSeller(t, db, &future, enums.SubscriptionStatusActive)
	seedSeller(t, db, &past, enums.SubscriptionStatusCancelled)
	seedSeller(t, db, nil, enums.SubscriptionStatusActive)

	locked := seedSeller(t, db, &past, enums.SubscriptionStatusActive)
	acquired, err := repo.AcquireRenewalLock(ctx, locked.ID)
	require.NoError(t, err)
	require.True(t, acquired)

	rows, err := repo.ListLapsedSellers(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, lapsed.ID, rows[0].ID)
}

func TestListWithLedgersSkipsEmpty(t *testing.T) {
	db := setupAccountsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	empty := seedSeller(t, db, nil, enums.SubscriptionStatusActive)
	_ = empty

	withLedger, err := repo.FindByID(ctx, seedSeller(t, db, nil, enums.SubscriptionStatusActive).ID)
	require.NoError(t, err)
	withLedger.Payments = types.PaymentRecords{{
		PaymentID: "pi_led", Status: enums.PaymentStatusSucceeded, AccountID: withLedger.ID.String(),
	}}
	require.NoError(t, repo.Save(ctx, withLedger))

	rows, err := repo.ListWithLedgers(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, withLedger.ID, rows[0].ID)
}
