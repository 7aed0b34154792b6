package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/kdprince200-netizen/equiherds-sub003/internal/renewals"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/db/models"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/logger"
	"github.com/kdprince200-netizen/equiherds-sub003/pkg/metrics"
)

const defaultBackfillBatch = 100

type ledgerStore interface {
	ListWithLedgers(ctx context.Context, offset, limit int) ([]models.Account, error)
	Save(ctx context.Context, account *models.Account) error
}

// LedgerBackfillJobParams configures the one-time ledger migration job.
type LedgerBackfillJobParams struct {
	Logger    *logger.Logger
	Store     ledgerStore
	Metrics   *metrics.RenewalMetrics
	BatchSize int
}

// NewLedgerBackfillJob builds the migration that normalizes payment records
// written before the owning account id and customer display fields existed.
// Running it repeatedly is harmless: complete ledgers are left untouched.
func NewLedgerBackfillJob(params LedgerBackfillJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("account store required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultBackfillBatch
	}
	return &ledgerBackfillJob{
		logg:    params.Logger,
		store:   params.Store,
		metrics: params.Metrics,
		batch:   batch,
	}, nil
}

type ledgerBackfillJob struct {
	logg    *logger.Logger
	store   ledgerStore
	metrics *metrics.RenewalMetrics
	batch   int
}

func (j *ledgerBackfillJob) Name() string { return "ledger-backfill" }

func (j *ledgerBackfillJob) Run(ctx context.Context) error {
	start := time.Now()
	var (
		scanned  int
		repaired int
		errs     error
	)

	for offset := 0; ; offset += j.batch {
		rows, err := j.store.ListWithLedgers(ctx, offset, j.batch)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("listing ledger accounts: %w", err))
		}
		if len(rows) == 0 {
			break
		}
		scanned += len(rows)

		for i := range rows {
			account := &rows[i]
			patched := renewals.RepairLedger(account)
			if patched == 0 {
				continue
			}
			if err := j.store.Save(ctx, account); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("account %s: %w", account.ID, err))
				continue
			}
			repaired++
			j.metrics.IncLedgerRepair()
		}

		if len(rows) < j.batch {
			break
		}
	}

	summary := j.logg.WithFields(ctx, map[string]any{
		"scanned":     scanned,
		"repaired":    repaired,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	j.logg.Info(summary, "ledger backfill finished")
	return errs
}
