package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	apperrors "github.com/kdprince200-netizen/equiherds-sub003/pkg/errors"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
)

const defaultSweepLimit = 250

type lapsedLister interface {
	ListLapsedSellers(ctx context.Context, now time.Time, limit int) ([]models.Account, error)
}

type renewalRunner interface {
	Renew(ctx context.Context, accountID uuid.UUID, now time.Time) (*renewals.Outcome, error)
}

// RenewalSweepJobParams configures the scheduled renewal sweep.
type RenewalSweepJobParams struct {
	Logger   *logger.Logger
	Accounts lapsedLister
	Renewals renewalRunner
	Limit    int
	Now      func() time.Time
}

// NewRenewalSweepJob builds the job that renews every lapsed seller
// subscription on a schedule.
func NewRenewalSweepJob(params RenewalSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts lister required")
	}
	if params.Renewals == nil {
		return nil, fmt.Errorf("renewal service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSweepLimit
	}
	return &renewalSweepJob{
		logg:     params.Logger,
		accounts: params.Accounts,
		renewals: params.Renewals,
		limit:    limit,
		now:      now,
	}, nil
}

type renewalSweepJob struct {
	logg     *logger.Logger
	accounts lapsedLister
	renewals renewalRunner
	limit    int
	now      func() time.Time
}

func (j *renewalSweepJob) Name() string { return "renewal-sweep" }

// Run bills every lapsed seller found in this cycle. Per-account rejections
// that need a human (declined cards, contended locks) are logged and skipped;
// infrastructure failures are aggregated and fail the job.
func (j *renewalSweepJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	rows, err := j.accounts.ListLapsedSellers(ctx, now, j.limit)
	if err != nil {
		return fmt.Errorf("listing lapsed sellers: %w", err)
	}
	if len(rows) == 0 {
		j.logg.Info(ctx, "no lapsed subscriptions found")
		return nil
	}

	var (
		renewed int
		errs    error
	)
	for _, account := range rows {
		accountCtx := j.logg.WithAccountID(ctx, account.ID.String())
		outcome, renewErr := j.renewals.Renew(accountCtx, account.ID, now)
		if renewErr != nil {
			if isExpectedRejection(renewErr) {
				j.logg.Warn(accountCtx, fmt.Sprintf("renewal skipped: %v", renewErr))
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("account %s: %w", account.ID, renewErr))
			continue
		}
		if !outcome.Suppressed {
			renewed++
		}
	}

	summary := j.logg.WithFields(ctx, map[string]any{"candidates": len(rows), "renewed": renewed})
	j.logg.Info(summary, "renewal sweep finished")
	return errs
}

// isExpectedRejection reports whether the failure is a per-account condition
// the sweep can do nothing about this cycle.
func isExpectedRejection(err error) bool {
	appErr := apperrors.As(err)
	if appErr == nil {
		return false
	}
	switch appErr.Code() {
	case apperrors.CodeValidation, apperrors.CodeStateConflict, apperrors.CodeConflict, apperrors.CodePaymentRequired:
		return true
	default:
		return false
	}
}
