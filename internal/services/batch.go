package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"golang.org/x/sync/errgroup"
)

// Period keys of the accrual markers.
const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// BatchRunner drives the bulk ledger runs. Every candidate is processed in its own unit of work,
// and a candidate's error or panic never stops the rest of the batch.
type BatchRunner struct {
	accounts    AccountReader
	txns        TransactionReader
	settler     Settler
	accruer     Accruer
	reconciler  Reconciler
	markers     AccrualMarker
	locker      JobLocker
	metrics     Metrics
	concurrency int
	pageSize    int
	now         Clock
}

// DefaultPageSize is the candidate page size used when none is configured.
const DefaultPageSize = 1000

// NewBatchRunner creates a new BatchRunner. concurrency bounds the candidates processed at once;
// candidates are loaded pageSize at a time until the store runs out of them.
func NewBatchRunner(
	accounts AccountReader,
	txns TransactionReader,
	settler Settler,
	accruer Accruer,
	reconciler Reconciler,
	markers AccrualMarker,
	locker JobLocker,
	metrics Metrics,
	concurrency int,
	pageSize int,
) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &BatchRunner{
		accounts:    accounts,
		txns:        txns,
		settler:     settler,
		accruer:     accruer,
		reconciler:  reconciler,
		markers:     markers,
		locker:      locker,
		metrics:     metrics,
		concurrency: concurrency,
		pageSize:    pageSize,
		now:         time.Now,
	}
}

// RunScheduledTransfers settles every SCHEDULED transaction due at now.
func (r *BatchRunner) RunScheduledTransfers(ctx context.Context, now time.Time) (models.BatchReport, error) {
	return runBatch(ctx, r, models.JobScheduledTransfers,
		func(ctx context.Context, afterID int64) ([]models.Transaction, error) {
			return r.txns.FindDueScheduledTransactions(ctx, now, afterID, r.pageSize)
		},
		func(ctx context.Context, t models.Transaction) (models.Outcome, error) {
			result, err := r.settler.Settle(ctx, t.ID)
			if err != nil {
				return models.OutcomeError, err
			}
			switch {
			case result.AlreadyTerminal:
				return models.OutcomeSkipped, nil
			case result.Status == models.TransactionStatusCompleted:
				return models.OutcomeSucceeded, nil
			default:
				return models.OutcomeFailed, nil
			}
		},
		func(t models.Transaction) (int64, string) { return t.ID, t.Reference },
	)
}

// RunDailyInterest accrues one day of interest on every eligible account, at most once per account per day.
func (r *BatchRunner) RunDailyInterest(ctx context.Context, day time.Time) (models.BatchReport, error) {
	return r.runInterest(ctx, models.JobDailyInterest, models.InterestPeriodDaily, day.Format(dayKeyLayout))
}

// RunMonthlyInterest accrues one month of interest on every eligible account, at most once per account per month.
func (r *BatchRunner) RunMonthlyInterest(ctx context.Context, month time.Time) (models.BatchReport, error) {
	return r.runInterest(ctx, models.JobMonthlyInterest, models.InterestPeriodMonthly, month.Format(monthKeyLayout))
}

func (r *BatchRunner) runInterest(ctx context.Context, job string, period models.InterestPeriod, periodKey string) (models.BatchReport, error) {
	return runBatch(ctx, r, job,
		func(ctx context.Context, afterID int64) ([]models.Account, error) {
			return r.accounts.FindAccountsByStatusAndType(ctx, models.AccountStatusActive, models.InterestBearingTypes, afterID, r.pageSize)
		},
		func(ctx context.Context, a models.Account) (models.Outcome, error) {
			if err := r.markers.Claim(ctx, period, a.ID, periodKey); err != nil {
				if errors.Is(err, models.ErrAlreadyClaimed) {
					return models.OutcomeSkipped, nil
				}
				return models.OutcomeError, err
			}

			posted, err := r.accruer.Accrue(ctx, a.ID, period)
			if err != nil {
				if relErr := r.markers.Release(ctx, period, a.ID, periodKey); relErr != nil {
					logger.Log.Errorw("failed to release accrual marker", "account", a.AccountNumber, "period", periodKey, "error", relErr)
				}
				return models.OutcomeError, err
			}
			if !posted.IsPositive() {
				return models.OutcomeSkipped, nil
			}
			return models.OutcomeSucceeded, nil
		},
		func(a models.Account) (int64, string) { return a.ID, a.AccountNumber },
	)
}

// RunReconciliation reconciles every ACTIVE account. Discrepancies count as failed candidates.
func (r *BatchRunner) RunReconciliation(ctx context.Context) (models.BatchReport, error) {
	return runBatch(ctx, r, models.JobReconciliation,
		func(ctx context.Context, afterID int64) ([]models.Account, error) {
			return r.accounts.FindAccountsByStatusAndType(ctx, models.AccountStatusActive, nil, afterID, r.pageSize)
		},
		func(ctx context.Context, a models.Account) (models.Outcome, error) {
			d, err := r.reconciler.Reconcile(ctx, a.ID)
			if err != nil {
				return models.OutcomeError, err
			}
			if d != nil {
				return models.OutcomeFailed, nil
			}
			return models.OutcomeSucceeded, nil
		},
		func(a models.Account) (int64, string) { return a.ID, a.AccountNumber },
	)
}

// runBatch walks the candidates page by page under the job lock, keyed by id, and processes each
// one in isolation. A page shorter than the page size ends the walk.
func runBatch[T any](
	ctx context.Context,
	r *BatchRunner,
	job string,
	load func(ctx context.Context, afterID int64) ([]T, error),
	process func(ctx context.Context, item T) (models.Outcome, error),
	key func(item T) (id int64, label string),
) (models.BatchReport, error) {
	report := models.BatchReport{Job: job}
	start := r.now()

	err := r.locker.WithLock(ctx, job, func(ctx context.Context) error {
		var afterID int64
		for {
			items, err := load(ctx, afterID)
			if err != nil {
				return fmt.Errorf("load %s candidates after id %d: %w", job, afterID, err)
			}
			report.Candidates += len(items)

			outcomes := make([]models.Outcome, len(items))
			var g errgroup.Group
			g.SetLimit(r.concurrency)
			for i, item := range items {
				i, item := i, item
				g.Go(func() error {
					_, label := key(item)
					outcomes[i] = processCandidate(ctx, job, label, func() (models.Outcome, error) {
						return process(ctx, item)
					})
					return nil
				})
			}
			_ = g.Wait()

			for _, o := range outcomes {
				report.Add(o)
			}

			if len(items) < r.pageSize {
				return nil
			}
			afterID, _ = key(items[len(items)-1])

			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%s stopped after id %d: %w", job, afterID, err)
			}
		}
	})
	report.Duration = r.now().Sub(start)

	if err != nil {
		if errors.Is(err, models.ErrAlreadyClaimed) {
			logger.Log.Infow("batch skipped, running elsewhere", "job", job)
		} else {
			logger.Log.Errorw("batch failed", "job", job, "error", err)
		}
		return report, err
	}

	r.metrics.RecordBatch(report)
	logger.Log.Infow("batch finished",
		"job", job,
		"candidates", report.Candidates,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"errors", report.Errors,
		"duration", report.Duration,
	)
	return report, nil
}

// processCandidate runs fn and turns its error or panic into an outcome.
func processCandidate(ctx context.Context, job, candidate string, fn func() (models.Outcome, error)) (outcome models.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorw("batch candidate panicked", "job", job, "candidate", candidate, "panic", rec)
			outcome = models.OutcomeError
		}
	}()

	outcome, err := fn()
	if err == nil {
		return outcome
	}
	if models.IsNotFound(err) {
		logger.Log.Warnw("batch candidate not found, skipping", "job", job, "candidate", candidate, "error", err)
		return models.OutcomeSkipped
	}
	logger.Log.Errorw("batch candidate failed", "job", job, "candidate", candidate, "error", err, "cancelled", ctx.Err() != nil)
	return models.OutcomeError
}
