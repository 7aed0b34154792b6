package renewals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kdprince200-netizen/equiherds-sub003/pkg/config"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	apperrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/metrics"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/timeout"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/types"
)

type accountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	AcquireRenewalLock(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseRenewalLock(ctx context.Context, id uuid.UUID) error
}

// Outcome is the result of one renewal attempt.
type Outcome struct {
	PaymentID  string
	Suppressed bool
	Account    *models.Account
}

// Service defines the renewal pipeline surface.
type Service interface {
	Renew(ctx context.Context, accountID uuid.UUID, now time.Time) (*Outcome, error)
	Account(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
}

// ServiceParams groups dependencies for the renewal service.
type ServiceParams struct {
	Store   accountStore
	Gateway StripeChargeClient
	Logger  *logger.Logger
	Metrics *metrics.RenewalMetrics
	Billing config.BillingConfig
	Now     func() time.Time
}

type service struct {
	store     accountStore
	charges   *ChargeOrchestrator
	ledger    *LedgerWriter
	log       *logger.Logger
	metrics   *metrics.RenewalMetrics
	cooldown  time.Duration
	opTimeout time.Duration
	now       func() time.Time
}

// NewService builds a renewal service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("account store required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}

	currency := params.Billing.Currency
	if currency == "" {
		currency = "usd"
	}
	charges, err := NewChargeOrchestrator(params.Gateway, currency)
	if err != nil {
		return nil, err
	}
	ledger, err := NewLedgerWriter(params.Store)
	if err != nil {
		return nil, err
	}

	cooldown := params.Billing.CooldownWindow
	if cooldown <= 0 {
		cooldown = 2 * time.Hour
	}
	opTimeout := params.Billing.OperationTimeout
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		store:     params.Store,
		charges:   charges,
		ledger:    ledger,
		log:       params.Logger,
		metrics:   params.Metrics,
		cooldown:  cooldown,
		opTimeout: opTimeout,
		now:       now,
	}, nil
}

// Account returns the account with its billing state and ledger.
func (s *service) Account(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	if accountID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "account id is required")
	}
	return s.loadAccount(ctx, accountID)
}

// Renew runs the full billing pipeline for one account: eligibility, lock,
// duplicate suppression, off-session charge, expiry advance, ledger write.
// The lock is released on every exit path past acquisition. A zero now falls
// back to the service clock.
func (s *service) Renew(ctx context.Context, accountID uuid.UUID, now time.Time) (*Outcome, error) {
	if accountID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "account id is required")
	}
	if now.IsZero() {
		now = s.now()
	}
	started := time.Now()
	ctx = s.log.WithAccountID(ctx, accountID.String())

	account, err := s.loadAccount(ctx, accountID)
	if err != nil {
		s.observe(started, metrics.OutcomeInternalError, err)
		return nil, err
	}

	if err := CheckEligibility(account, now); err != nil {
		s.metrics.ObserveAttempt(metrics.OutcomeNotEligible, time.Since(started))
		return nil, err
	}

	acquired, err := timeout.Do(ctx, "renewal lock acquire", s.opTimeout, func(child context.Context) (bool, error) {
		return s.store.AcquireRenewalLock(child, accountID)
	})
	if err != nil {
		s.observe(started, metrics.OutcomeInternalError, err)
		return nil, s.asDependencyErr(err, "acquiring renewal lock")
	}
	if !acquired {
		s.metrics.ObserveAttempt(metrics.OutcomeLockHeld, time.Since(started))
		return nil, apperrors.New(apperrors.CodeConflict, "a renewal for this account is already in progress")
	}
	defer s.releaseLock(ctx, accountID)

	// Re-read under the lock so the eventual save does not clobber writes
	// that landed between eligibility and acquisition.
	account, err = s.loadAccount(ctx, accountID)
	if err != nil {
		s.observe(started, metrics.OutcomeInternalError, err)
		return nil, err
	}

	if prior := FindRecentCharge(account.Payments, s.cooldown, now); prior != nil {
		s.log.Info(s.log.WithField(ctx, "payment_id", prior.PaymentID), "renewal suppressed, recent charge found")
		s.metrics.ObserveAttempt(metrics.OutcomeSuppressed, time.Since(started))
		return &Outcome{PaymentID: prior.PaymentID, Suppressed: true, Account: account}, nil
	}

	amountCents := AmountMinorUnits(account.SubscriptionPrice)
	result, err := timeout.Do(ctx, "gateway charge", s.opTimeout, func(child context.Context) (*ChargeResult, error) {
		return s.charges.Charge(child, account, amountCents)
	})
	if err != nil {
		s.log.Error(ctx, "renewal charge did not complete", err)
		s.observe(started, chargeOutcome(err), err)
		return nil, err
	}

	newExpiry, newStatus := ComputeExpiry(account.SubscriptionDurationDays, now)
	record := types.PaymentRecord{
		PaymentID:     result.PaymentID,
		Date:          now,
		AmountCents:   amountCents,
		Currency:      s.charges.Currency(),
		Status:        result.Status,
		AccountID:     accountID.String(),
		CustomerName:  account.Name,
		CustomerEmail: account.Email,
		Snapshot: types.SubscriptionSnapshot{
			Name:         account.SubscriptionName,
			Price:        account.SubscriptionPrice,
			DurationDays: account.SubscriptionDurationDays,
			Status:       newStatus,
			Expiry:       &newExpiry,
		},
	}

	err = timeout.Run(ctx, "ledger write", s.opTimeout, func(child context.Context) error {
		return s.ledger.Write(child, account, record, newExpiry, newStatus)
	})
	if err != nil {
		s.log.Error(ctx, "charge succeeded but ledger write failed", err)
		s.observe(started, metrics.OutcomeInternalError, err)
		return nil, err
	}

	fields := map[string]any{"payment_id": result.PaymentID, "amount_cents": amountCents}
	s.log.Info(s.log.WithFields(ctx, fields), "subscription renewed")
	s.metrics.ObserveAttempt(metrics.OutcomeRenewed, time.Since(started))
	return &Outcome{PaymentID: result.PaymentID, Account: account}, nil
}

func (s *service) loadAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := timeout.Do(ctx, "account load", s.opTimeout, func(child context.Context) (*models.Account, error) {
		return s.store.FindByID(child, accountID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "account not found")
		}
		return nil, s.asDependencyErr(err, "loading account")
	}
	return account, nil
}

// releaseLock clears the processing flag even when the request context is
// already cancelled or expired.
func (s *service) releaseLock(ctx context.Context, accountID uuid.UUID) {
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
	defer cancel()
	if err := s.store.ReleaseRenewalLock(relCtx, accountID); err != nil {
		s.log.Error(ctx, "releasing renewal lock failed", err)
	}
}

// asDependencyErr keeps typed errors intact and classifies anything else as a
// persistence dependency failure.
func (s *service) asDependencyErr(err error, message string) error {
	if appErr := apperrors.As(err); appErr != nil {
		return appErr
	}
	return apperrors.Wrap(apperrors.CodeDependency, err, message)
}

func (s *service) observe(started time.Time, outcome string, err error) {
	if appErr := apperrors.As(err); appErr != nil && appErr.Code() == apperrors.CodeTimeout {
		outcome = metrics.OutcomeTimedOut
	}
	s.metrics.ObserveAttempt(outcome, time.Since(started))
}

func chargeOutcome(err error) string {
	appErr := apperrors.As(err)
	if appErr == nil {
		return metrics.OutcomeInternalError
	}
	switch appErr.Code() {
	case apperrors.CodePaymentRequired:
		return metrics.OutcomeNeedsAction
	case apperrors.CodeTimeout:
		return metrics.OutcomeTimedOut
	case apperrors.CodeDependency:
		return metrics.OutcomeChargeFailed
	default:
		return metrics.OutcomeInternalError
	}
}
