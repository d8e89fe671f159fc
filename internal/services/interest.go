package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/shopspring/decimal"
)

// InterestService posts interest on eligible accounts.
type InterestService struct {
	uow       UnitOfWork
	accounts  AccountReader
	publisher EventPublisher
	metrics   Metrics
	retry     RetryPolicy
	now       Clock
}

// NewInterestService creates a new InterestService.
func NewInterestService(
	uow UnitOfWork,
	accounts AccountReader,
	publisher EventPublisher,
	metrics Metrics,
	retry RetryPolicy,
) *InterestService {
	return &InterestService{
		uow:       uow,
		accounts:  accounts,
		publisher: publisher,
		metrics:   metrics,
		retry:     retry,
		now:       time.Now,
	}
}

// AccrueDaily posts one day of interest.
func (s *InterestService) AccrueDaily(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	return s.Accrue(ctx, accountID, models.InterestPeriodDaily)
}

// AccrueMonthly posts one month of interest.
func (s *InterestService) AccrueMonthly(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	return s.Accrue(ctx, accountID, models.InterestPeriodMonthly)
}

// AccrueByNumber resolves the account number and accrues interest for period.
func (s *InterestService) AccrueByNumber(ctx context.Context, number string, period models.InterestPeriod) (decimal.Decimal, error) {
	account, err := s.accounts.GetAccountByNumber(ctx, number)
	if err != nil {
		logger.Log.Errorw("failed to resolve account", "account", number, "error", err)
		return decimal.Zero, err
	}
	return s.Accrue(ctx, account.ID, period)
}

// Accrue computes interest on the current balance and, when positive, credits it together with
// a COMPLETED INTEREST transaction in one unit of work. It returns the posted amount; zero means
// nothing was posted. It computes from the balance at call time, so running it twice in the same
// period posts twice.
func (s *InterestService) Accrue(ctx context.Context, accountID int64, period models.InterestPeriod) (decimal.Decimal, error) {
	if !period.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", models.ErrInvalidPeriod, period)
	}

	var (
		posted decimal.Decimal
		number string
	)

	err := s.retry.Do(ctx, "accrue_"+string(period), s.metrics, func(ctx context.Context) error {
		posted = decimal.Zero
		return s.uow.AtomicUpdate(ctx, func(ctx context.Context, tx repositories.LedgerTx) error {
			account, err := tx.LockAccount(ctx, accountID)
			if err != nil {
				return err
			}
			if !account.EarnsInterest() {
				return nil
			}

			amount := models.CalculateInterest(account.Balance, account.InterestRate.Decimal, period)
			if !amount.IsPositive() {
				return nil
			}

			account.Credit(amount)
			if err := tx.UpdateAccountBalances(ctx, account); err != nil {
				return err
			}

			txn := models.NewInterestTransaction(account.ID, amount, period, s.now())
			if err := tx.CreateTransaction(ctx, &txn); err != nil {
				return err
			}

			posted = amount
			number = account.AccountNumber
			return nil
		})
	})
	if err != nil {
		logger.Log.Errorw("interest accrual failed", "account_id", accountID, "period", period, "error", err)
		return decimal.Zero, err
	}

	if !posted.IsPositive() {
		logger.Log.Debugw("no interest posted", "account_id", accountID, "period", period)
		return decimal.Zero, nil
	}

	s.metrics.RecordInterest(period, posted)
	s.publisher.Publish(ctx, models.LedgerEvent{
		Type:          models.EventInterestPosted,
		AccountNumber: number,
		Amount:        posted,
		Status:        string(period),
		Timestamp:     s.now().Unix(),
	})

	logger.Log.Infow("interest posted", "account", number, "period", period, "amount", posted)
	return posted, nil
}
